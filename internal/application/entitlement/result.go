package entitlement

// Códigos de fallo expuestos a la capa de presentación.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeModuleNotFound      = "MODULE_NOT_FOUND"
	CodeModuleUnavailable   = "MODULE_UNAVAILABLE"
	CodeAlreadyActive       = "ALREADY_ACTIVE"
	CodeNotActive           = "NOT_ACTIVE"
	CodeCoreModuleProtected = "CORE_MODULE_PROTECTED"
	CodeQuotaExceeded       = "QUOTA_EXCEEDED"
	CodeInternal            = "INTERNAL"
)

// Mensaje genérico para fallos de infraestructura; el detalle queda en el log.
const internalMessage = "no se pudo completar la operación, intente más tarde"

// Result es el resultado estructurado de una transición. Los fallos de negocio nunca
// se devuelven como error: la UI muestra Message directamente.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// OK construye un resultado exitoso.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail construye un resultado fallido con código.
func Fail(code, message string) Result {
	return Result{Success: false, Message: message, Code: code}
}

func outcome(r Result) string {
	if r.Success {
		return "OK"
	}
	return r.Code
}
