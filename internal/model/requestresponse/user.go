package requestresponse

// RegisterRequest : тело запроса на регистрацию
type RegisterRequest struct {
	Email     string `json:"email" example:"user@example.com"`
	Password  string `json:"password" example:"P@ssw0rd123"`
	FirstName string `json:"first_name" example:"Ivan"`
	LastName  string `json:"last_name" example:"Petrov"`
}

// RegisterResponse : ответ на успешную регистрацию
type RegisterResponse struct {
	Response struct {
		UserUUID string `json:"user_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Email    string `json:"email" example:"user@example.com"`
	} `json:"response"`
}

// UpdateUserRequest : запрос на обновление профиля
type UpdateUserRequest struct {
	FirstName string `json:"first_name" example:"Ivan"`
	LastName  string `json:"last_name" example:"Petrov"`
}

// UpdatePasswordRequest : запрос на смену пароля
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" example:"N3wP@ssw0rd!"`
}

// UserResponse : профиль пользователя
type UserResponse struct {
	Response struct {
		UserUUID   string `json:"user_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Email      string `json:"email" example:"user@example.com"`
		FirstName  string `json:"first_name" example:"Ivan"`
		LastName   string `json:"last_name" example:"Petrov"`
		ImageURL   string `json:"image_url,omitempty" example:"https://s3/..."`
		IsVerified bool   `json:"is_verified" example:"true"`
	} `json:"response"`
}

// VerifyEmailRequest : запрос на подтверждение email по токену
type VerifyEmailRequest struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// SendVerificationRequest : запрос ссылки подтверждения email
type SendVerificationRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// ImageUploadRequest : запрос pre-signed ссылки для изображения профиля
type ImageUploadRequest struct {
	FileName string `json:"file_name" example:"avatar.png"`
}

// SendVerificationResponse : ответ на запрос ссылки подтверждения
type SendVerificationResponse struct {
	Response struct {
		Delivered bool `json:"delivered" example:"true"`
	} `json:"response"`
}

// ImageUploadResponse : pre-signed ссылки для загрузки изображения профиля
type ImageUploadResponse struct {
	Response struct {
		UploadURL string `json:"upload_url" example:"https://s3/presigned-put"`
		ImagePath string `json:"image_path" example:"profile/media_689f1c2.png"`
	} `json:"response"`
}
