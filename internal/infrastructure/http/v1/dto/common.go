package dto

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// PageQuery carries page and limit query parameters.
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}
