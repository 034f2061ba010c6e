package face

type EnrollRequest struct {
	FaceDescriptor Descriptor `json:"face_descriptor" binding:"required,descriptor"`
	Image          string     `json:"image"`
}

type EnrollResponse struct {
	Message string `json:"message"`
	Created bool   `json:"created"`
}

type FaceImageResponse struct {
	StudentID int64  `json:"studentId"`
	Image     string `json:"image"`
}
