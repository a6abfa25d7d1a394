package domain

// GenerateRequest represents the request body for starting a video generation.
type GenerateRequest struct {
	Script string   `json:"script" validate:"required,max=1000"`
	Style  []string `json:"style"`
	Avatar string   `json:"avatar" validate:"omitempty,oneof=male female ai none"`
	Voice  string   `json:"voice" validate:"omitempty,oneof=male female narrator"`
}

// GenerateResponse acknowledges an accepted generation request.
type GenerateResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is the poller's view of a task.
type StatusResponse struct {
	TaskID   string    `json:"task_id"`
	Status   TaskState `json:"status"`
	Progress int       `json:"progress"`
	Message  string    `json:"message"`
	VideoID  string    `json:"video_id,omitempty"`
	VideoURL string    `json:"video_url,omitempty"`
}
