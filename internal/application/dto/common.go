package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResultResponse resultado de una operación de negocio (activar, desactivar, reparar, asignar permiso).
// Los fallos esperables llegan aquí con success=false y un código; la UI muestra message.
type ResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
