package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email      string `json:"email" example:"user@example.com"`
	Password   string `json:"password" example:"P@ssw0rd123"`
	DeviceName string `json:"deviceName" example:"phone"`
}

// SessionResponse : ответ на успешный login или refresh
type SessionResponse struct {
	Response struct {
		AccessSecret  string `json:"accessSecret" example:"7f2b...|vcSi0369y1I62wOpxZFpgZ"`
		RefreshSecret string `json:"refreshSecret" example:"sfuqwejqjoiu93e29"`
		ExpiresIn     int64  `json:"expiresIn" example:"3600"`
		DeviceName    string `json:"deviceName" example:"phone"`
	} `json:"response"`
}

// RefreshRequest : запрос на ротацию пары секретов
type RefreshRequest struct {
	RefreshSecret string `json:"refreshSecret" example:"sfuqwejqjoiu93e29"`
	DeviceName    string `json:"deviceName" example:"phone"`
}

// LogoutRequest : запрос на выход с текущего устройства
type LogoutRequest struct {
	DeviceName string `json:"deviceName" example:"phone"`
}

// LogoutResponse : ответ на выход с устройства
type LogoutResponse struct {
	Response struct {
		DeviceName string `json:"deviceName" example:"phone"`
	} `json:"response"`
}

// LogoutAllResponse : ответ на выход со всех устройств
type LogoutAllResponse struct {
	Response struct {
		Count   int64    `json:"count" example:"2"`
		Devices []string `json:"devices" example:"phone,laptop"`
	} `json:"response"`
}

// DevicesResponse : список устройств с активной сессией
type DevicesResponse struct {
	Response struct {
		Count   int      `json:"count" example:"2"`
		Devices []string `json:"devices" example:"phone,laptop"`
	} `json:"response"`
}

// ErrorResponse : стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error" example:"Unauthorized"`
	Message string `json:"message" example:"неверный логин или пароль"`
	Code    int    `json:"code" example:"401"`
}
