package common

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin/render"
)

// CustomEvent renders a single server-sent event. Unlike gin's built-in SSE
// render it never JSON-encodes string payloads, which lets handlers forward
// pre-serialized chunks verbatim.
type CustomEvent struct {
	Event string
	Id    string
	Retry uint
	Data  any
}

var contentType = []string{"text/event-stream"}
var noCache = []string{"no-cache"}

var dataReplacer = strings.NewReplacer(
	"\n", "\ndata:",
	"\r", "\\r")

func encode(writer io.Writer, event CustomEvent) error {
	return writeData(writer, event.Data)
}

func writeData(w io.Writer, data any) error {
	dataReplacer.WriteString(w, fmt.Sprint(data))
	if strings.HasPrefix(data.(string), "data") {
		_, err := w.Write([]byte("\n\n"))
		return err
	}
	return nil
}

// Render implements the gin render.Render interface.
func (r CustomEvent) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	return encode(w, r)
}

// WriteContentType implements the gin render.Render interface.
func (r CustomEvent) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	header["Content-Type"] = contentType

	if _, exist := header["Cache-Control"]; !exist {
		header["Cache-Control"] = noCache
	}
}

var _ render.Render = CustomEvent{}
