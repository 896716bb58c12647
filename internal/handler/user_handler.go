package handler

import (
	"device-auth-server/internal/model"
	"device-auth-server/internal/model/requestresponse"
	"device-auth-server/internal/ports"
	"device-auth-server/internal/service"
	"device-auth-server/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	ports.UserService
	ports.VerificationService
	ports.ProfileImageService
}

func NewUserHandler(
	userService ports.UserService,
	verificationService ports.VerificationService,
	profileImageService ports.ProfileImageService,
) *UserHandler {
	return &UserHandler{
		userService,
		verificationService,
		profileImageService}
}

// RegisterUser godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт пользователя с неподтверждённым email и отправляет ссылку подтверждения.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.RegisterResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/v1/user [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, 400, "email и password обязательны")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		log.Println(err)
		if errContainsValidation(err) {
			sendErrorResponse(w, 400, "bad request")
			return
		}
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	resp := requestresponse.RegisterResponse{}
	resp.Response.UserUUID = user.UUID
	resp.Response.Email = user.Email

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// GetUser godoc
// @Summary Получение профиля пользователя
// @Description Возвращает профиль. Доступен только самому пользователю.
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/user/{uuid} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	targetUUID := chi.URLParam(r, "uuid")

	user, err := h.UserService.GetUser(r.Context(), targetUUID)
	if err != nil {
		log.Println(err)
		sendUserError(w, err)
		return
	}

	imageURL, err := h.ProfileImageService.ImageURL(r.Context(), user.ImagePath)
	if err != nil {
		log.Println(err)
		imageURL = ""
	}

	resp := requestresponse.UserResponse{}
	resp.Response.UserUUID = user.UUID
	resp.Response.Email = user.Email
	resp.Response.FirstName = user.FirstName
	resp.Response.LastName = user.LastName
	resp.Response.ImageURL = imageURL
	resp.Response.IsVerified = user.IsVerified

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// UpdateUser godoc
// @Summary Обновление профиля
// @Description Позволяет пользователю обновить имя и фамилию.
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.UpdateUserRequest true "Тело запроса"
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/user/{uuid} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	targetUUID := chi.URLParam(r, "uuid")

	var req requestresponse.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	updatedUser := &model.User{
		UUID:      targetUUID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if err := h.UserService.UpdateUser(r.Context(), updatedUser); err != nil {
		log.Println(err)
		sendUserError(w, err)
		return
	}

	resp := requestresponse.UserResponse{}
	resp.Response.UserUUID = targetUUID
	resp.Response.FirstName = req.FirstName
	resp.Response.LastName = req.LastName

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// UpdatePassword godoc
// @Summary Смена пароля
// @Description Позволяет пользователю сменить свой пароль. Доступен только владельцу.
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.UpdatePasswordRequest true "Тело запроса"
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 204 "Пароль обновлён"
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/user/{uuid}/password [put]
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	targetUUID := chi.URLParam(r, "uuid")

	var req requestresponse.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.UserService.UpdatePassword(r.Context(), targetUUID, req.NewPassword); err != nil {
		log.Println(err)
		if errContainsValidation(err) {
			sendErrorResponse(w, 400, err.Error())
			return
		}
		sendUserError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser godoc
// @Summary Удаление пользователя
// @Description Удаляет пользователя, предварительно отозвав его учётные данные на всех устройствах.
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 204 "Пользователь удалён"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/user/{uuid} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetUUID := chi.URLParam(r, "uuid")

	if err := h.UserService.DeleteUser(r.Context(), targetUUID); err != nil {
		log.Println(err)
		sendUserError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PrepareImageUpload godoc
// @Summary Загрузка изображения профиля
// @Description Возвращает pre-signed PUT ссылку, по которой клиент сам загружает файл в хранилище.
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.ImageUploadRequest true "Тело запроса"
// @Param Authorization header string true "Bearer секрет" default(Bearer <access_secret>)
// @Success 200 {object} requestresponse.ImageUploadResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/user/{uuid}/image [post]
func (h *UserHandler) PrepareImageUpload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	targetUUID := chi.URLParam(r, "uuid")

	var req requestresponse.ImageUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.FileName == "" {
		sendErrorResponse(w, 400, "file_name обязателен")
		return
	}

	uploadURL, imagePath, err := h.UserService.PrepareProfileImage(r.Context(), targetUUID, req.FileName)
	if err != nil {
		log.Println(err)
		if errContainsValidation(err) {
			sendErrorResponse(w, 400, err.Error())
			return
		}
		sendUserError(w, err)
		return
	}

	resp := requestresponse.ImageUploadResponse{}
	resp.Response.UploadURL = uploadURL
	resp.Response.ImagePath = imagePath

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// SendVerification godoc
// @Summary Запрос ссылки подтверждения email
// @Description Отправляет ссылку подтверждения. Ответ одинаков для известных и неизвестных адресов.
// @Tags Verification
// @Accept json
// @Produce json
// @Param body body requestresponse.SendVerificationRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SendVerificationResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/v1/email/verification-notification [post]
func (h *UserHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.SendVerificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" {
		sendErrorResponse(w, 400, "email обязателен")
		return
	}

	if err := h.VerificationService.SendVerification(r.Context(), req.Email); err != nil {
		log.Println(err)
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
		return
	}

	resp := requestresponse.SendVerificationResponse{}
	resp.Response.Delivered = true

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(resp)
}

// VerifyEmail godoc
// @Summary Подтверждение email
// @Description Помечает email подтверждённым по токену из письма.
// @Tags Verification
// @Accept json
// @Produce json
// @Param body body requestresponse.VerifyEmailRequest true "Тело запроса"
// @Success 204 "Email подтверждён"
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 422 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/v1/email/verify [post]
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.VerifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Token == "" {
		sendErrorResponse(w, 400, "token обязателен")
		return
	}

	if err := h.VerificationService.ConfirmVerification(r.Context(), req.Token); err != nil {
		log.Println(err)
		sendErrorResponse(w, http.StatusUnprocessableEntity, "невалидный токен подтверждения")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func errContains(err error, substr string) bool {
	return err != nil && strings.Contains(err.Error(), substr)
}

// errContainsValidation : ошибки валидации входных полей, клиенту отдаётся 400
func errContainsValidation(err error) bool {
	return errContains(err, "email должен") ||
		errContains(err, "некорректный email") ||
		errContains(err, "пароль") ||
		errContains(err, "расширение изображения")
}

// sendUserError транслирует ошибки сервиса пользователей в HTTP статус
func sendUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
	case errContains(err, "доступ запрещён"):
		sendErrorResponse(w, http.StatusForbidden, "доступ запрещён")
	case errContains(err, "не найден"):
		sendErrorResponse(w, http.StatusNotFound, "пользователь не найден")
	default:
		sendErrorResponse(w, 500, "внутренняя ошибка сервера")
	}
}

// decodeJSON обрабатывает декодирование JSON и возвращает ответ об ошибке, если декодирование не удалось.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		util.HandleError(w, "invalid request body", 400)
		return err
	}
	return nil
}

// validateDeviceName : имя устройства обязательно и не длиннее 248 байт
func validateDeviceName(deviceName string) error {
	if deviceName == "" {
		return fmt.Errorf("deviceName обязателен")
	}
	if len(deviceName) > 248 {
		return fmt.Errorf("deviceName должен быть не длиннее 248 символов")
	}
	return nil
}

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}
