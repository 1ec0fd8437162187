package restyutil

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// Dump writes every request and response of the client to output, it is
// meant for inspecting what a scraper actually received. A nil output does
// nothing.
func Dump(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		output.Write(messageId(id, res.Request), formatHttpMessage(res))
		return nil
	})
}

func messageId(id uint64, req *resty.Request) string {
	path := "root"
	if req.RawRequest != nil {
		trimmed := strings.Trim(req.RawRequest.URL.Path, "/")
		if trimmed != "" {
			path = strings.ReplaceAll(trimmed, "/", "_")
		}
	}
	return fmt.Sprintf("%04d-%s-%s.txt", id, strings.ToLower(req.Method), path)
}
