package respond

import (
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"
)

// Failure is the standard error envelope: {"success":false,"error":"..."}.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON sends a JSON response with the specified HTTP status code and data.
// It uses the Gin context to encode the data into JSON format.
func JSON(c *ginext.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends a 200 OK JSON response with the given body as-is.
func OK(c *ginext.Context, body interface{}) {
	JSON(c, http.StatusOK, body)
}

// Fail sends the error envelope with the specified HTTP status code.
func Fail(c *ginext.Context, status int, err error) {
	JSON(c, status, Failure{Success: false, Error: err.Error()})
}

// Image streams image bytes directly from an io.Reader as the HTTP response
// with the given content type.
func Image(c *ginext.Context, status int, contentType string, size int64, reader io.Reader) {
	c.DataFromReader(status, size, contentType, reader, nil)
}
