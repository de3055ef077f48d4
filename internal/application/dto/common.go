package dto

// ErrorResponse cuerpo de error HTTP. El contrato con el escaparate es {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}
