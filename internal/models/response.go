package models

// ErrorResponse — стандартная структура ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Error string `json:"error"`
}
