package schemas

// SuccessDTO is the envelope of every successful response
// Data is the payload of the response
type SuccessDTO struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorDTO is the envelope of every failed response
// Message and Code are taken from the CustomError
type ErrorDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// MetadataDTO describes the running API
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// HealthDTO is returned by the health route
type HealthDTO struct {
	Ok      bool   `json:"ok"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

// UserDTO is a struct that represents a user response, it never carries credentials
// ProfileImageUrl is null when no avatar was uploaded
type UserDTO struct {
	Id              string  `json:"id"`
	FullName        string  `json:"fullName"`
	Email           string  `json:"email"`
	ProfileImageUrl *string `json:"profileImageUrl"`
}

// AuthDTO is returned by signup and login
type AuthDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

// MessageDTO carries a human readable message
type MessageDTO struct {
	Message string `json:"message"`
}

// OkDTO acknowledges an operation without payload
type OkDTO struct {
	Ok bool `json:"ok"`
}

// FileDTO is a struct that represents a stored file response
type FileDTO struct {
	Id           string       `json:"id"`
	OriginalName string       `json:"originalName"`
	MimeType     string       `json:"mimeType"`
	Size         int64        `json:"size"`
	Url          string       `json:"url"`
	UploadedAt   string       `json:"uploadedAt"`
	Category     FileCategory `json:"category"`
	Description  *string      `json:"description"`
}

// FileIdDTO is returned after a file was deleted
type FileIdDTO struct {
	Id string `json:"id"`
}

// DownloadDTO points to the static location of the file bytes
type DownloadDTO struct {
	Url string `json:"url"`
}

// FileStatsDTO summarises the caller's storage
type FileStatsDTO struct {
	Files      int                  `json:"files"`
	TotalBytes int64                `json:"totalBytes"`
	Categories map[FileCategory]int `json:"categories"`
}
