package service

import "errors"

// Таксономия ошибок жизненного цикла учётных данных.
// Handler-ы сопоставляют их через errors.Is, не по тексту.
var (
	// ErrInvalidCredentials : неверный email или пароль. Сообщение единое,
	// чтобы по ответу нельзя было перебирать существующие адреса.
	ErrInvalidCredentials = errors.New("неверный логин или пароль")

	// ErrInvalidRefreshToken : устройство неизвестно или секрет не совпал с хэшем
	ErrInvalidRefreshToken = errors.New("невалидный refresh секрет")

	// ErrExpiredRefreshToken : секрет совпал, но срок истёк.
	// Отличается от несовпадения: клиенту нужно предложить повторный вход.
	ErrExpiredRefreshToken = errors.New("просроченный refresh секрет")

	// ErrDeviceNotFound : отзыв вне контекста входа, а отзывать нечего
	ErrDeviceNotFound = errors.New("учётные данные устройства не найдены")

	// ErrNoCredentials : выход со всех устройств при нуле refresh записей.
	// Гасится на уровне Session Gate и не доходит до клиента как ошибка.
	ErrNoCredentials = errors.New("у пользователя нет активных учётных данных")

	ErrUnauthenticated  = errors.New("пользователь не авторизован")
	ErrEmailNotVerified = errors.New("email не подтверждён")
	ErrRateLimited      = errors.New("слишком много попыток входа")
)

// Контекст операции отзыва: для login отсутствие записей устройства не ошибка,
// для logout и refresh — ошибка ErrDeviceNotFound.
const (
	OperationLogin   = "login"
	OperationRefresh = "refresh"
	OperationLogout  = "logout"
)
