package auth

type LoginRequest struct {
	Email    string   `json:"email" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Lat      *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng      *float64 `json:"lng" binding:"omitempty,longitude"`
}

type LoginResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	AccessToken    string    `json:"accessToken"`
	FaceDescriptor []float64 `json:"face_descriptor"`
}
