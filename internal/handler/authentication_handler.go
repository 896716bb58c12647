package handler

import (
	"device-auth-server/internal/model/requestresponse"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/security"
	"device-auth-server/internal/service"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
)

type AuthenticationHandler struct {
	ports.SessionService
	ports.PolicyService
}

func NewAuthenticationHandler(
	sessionService ports.SessionService,
	policyService ports.PolicyService,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		sessionService,
		policyService}
}

// Login godoc
// @Summary Вход с устройства
// @Description Выдаёт пару секретов (access и refresh) для устройства по email и паролю.
// @Description Действующие учётные данные этого устройства отзываются в той же транзакции.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SessionResponse "Новая пара секретов"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный email или пароль"
// @Failure 403 {object} requestresponse.ErrorResponse "Email не подтверждён"
// @Failure 429 {object} requestresponse.ErrorResponse "Превышен лимит попыток входа"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, 400, "email и password обязательны")
		return
	}

	if err := validateDeviceName(req.DeviceName); err != nil {
		sendErrorResponse(w, 400, err.Error())
		return
	}

	if err := h.PolicyService.AllowLogin(ctx, clientIP(r)); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrRateLimited):
			sendErrorResponse(w, http.StatusTooManyRequests, "слишком много попыток входа")
		default:
			// отказ счётчика попыток не выдаётся за превышение лимита
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	if err := h.PolicyService.CheckEmailVerifiedForLogin(ctx, req.Email); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			sendErrorResponse(w, http.StatusForbidden, "email не подтверждён")
		case errors.Is(err, service.ErrInvalidCredentials):
			sendErrorResponse(w, http.StatusUnauthorized, "неверный email или пароль")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	pair, err := h.SessionService.Login(ctx, req.Email, req.Password, req.DeviceName)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			sendErrorResponse(w, http.StatusUnauthorized, "неверный email или пароль")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.SessionResponse{}
	resp.Response.AccessSecret = pair.AccessSecret
	resp.Response.RefreshSecret = pair.RefreshSecret
	resp.Response.ExpiresIn = pair.ExpiresIn
	resp.Response.DeviceName = pair.DeviceName

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// Refresh godoc
// @Summary Ротация пары секретов
// @Description Обменивает действующий refresh секрет устройства на новую пару.
// @Description Использованный refresh секрет перестаёт действовать сразу после коммита.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SessionResponse "Новая пара секретов"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Refresh секрет просрочен"
// @Failure 403 {object} requestresponse.ErrorResponse "Email не подтверждён"
// @Failure 422 {object} requestresponse.ErrorResponse "Refresh секрет не подошёл"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/v1/refresh-token [post]
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshSecret == "" {
		sendErrorResponse(w, 400, "refreshSecret обязателен")
		return
	}

	if err := validateDeviceName(req.DeviceName); err != nil {
		sendErrorResponse(w, 400, err.Error())
		return
	}

	if err := h.PolicyService.CheckEmailVerifiedForRefresh(ctx, req.RefreshSecret, req.DeviceName); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			sendErrorResponse(w, http.StatusForbidden, "email не подтверждён")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			sendErrorResponse(w, http.StatusUnprocessableEntity, "невалидный refresh секрет")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	pair, err := h.SessionService.Refresh(ctx, req.RefreshSecret, req.DeviceName)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrExpiredRefreshToken):
			sendErrorResponse(w, http.StatusUnauthorized, "refresh секрет просрочен")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			sendErrorResponse(w, http.StatusUnprocessableEntity, "невалидный refresh секрет")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.SessionResponse{}
	resp.Response.AccessSecret = pair.AccessSecret
	resp.Response.RefreshSecret = pair.RefreshSecret
	resp.Response.ExpiresIn = pair.ExpiresIn
	resp.Response.DeviceName = pair.DeviceName

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// Logout godoc
// @Summary Выход с текущего устройства
// @Description Отзывает пару секретов устройства, которым подписан запрос.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LogoutRequest true "Тело запроса"
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован"
// @Failure 404 {object} requestresponse.ErrorResponse "Устройство не найдено"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /api/v1/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := validateDeviceName(req.DeviceName); err != nil {
		sendErrorResponse(w, 400, err.Error())
		return
	}

	if err := h.SessionService.Logout(ctx, principal, req.DeviceName); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		case errors.Is(err, service.ErrDeviceNotFound):
			sendErrorResponse(w, http.StatusNotFound, "устройство не найдено")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.LogoutResponse{}
	resp.Response.DeviceName = req.DeviceName

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// LogoutAll godoc
// @Summary Выход со всех устройств
// @Description Отзывает учётные данные пользователя на всех устройствах.
// @Description Если активных учётных данных нет, возвращает пустой список с нулевым счётчиком.
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 200 {object} requestresponse.LogoutAllResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /api/v1/logout-from-all-devices [post]
func (h *AuthenticationHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	summary, err := h.SessionService.LogoutAll(ctx, principal)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		default:
			sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		}
		return
	}

	resp := requestresponse.LogoutAllResponse{}
	resp.Response.Count = summary.Count
	resp.Response.Devices = summary.DeviceNames

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// ListDevices godoc
// @Summary Список устройств пользователя
// @Description Возвращает имена устройств с активной сессией.
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 200 {object} requestresponse.DevicesResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /api/v1/logged-in-devices [get]
func (h *AuthenticationHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	principal, err := security.GetPrincipalFromContext(ctx)
	if err != nil || principal == nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	devices, err := h.SessionService.ListDevices(ctx, principal)
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	if devices == nil {
		devices = []string{}
	}

	resp := requestresponse.DevicesResponse{}
	resp.Response.Count = len(devices)
	resp.Response.Devices = devices

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// clientIP : адрес клиента без порта, для лимита попыток входа
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
