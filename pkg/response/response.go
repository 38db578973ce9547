package response

// Body is the uniform JSON envelope returned by every endpoint.
type Body struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(data any) Body {
	return Body{Status: "success", Data: data}
}

func SuccessMessage(message string, data any) Body {
	return Body{Status: "success", Message: message, Data: data}
}

func Error(message string) Body {
	return Body{Status: "error", Message: message}
}
