package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"openadr/internal/shared/logger"

	"openadr/internal/interfaces/http/utils"
)

// Recovery converts panics into opaque 500 problem responses. Broken
// client connections are logged and abandoned without a response.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		if checkBrokenConnection(recovered) {
			log.Warnw("client connection broken",
				"path", c.Request.URL.Path, "error", recovered)
			c.Abort()
			return
		}

		request, _ := httputil.DumpRequest(c.Request, false)
		log.Errorw("panic recovered",
			"path", c.Request.URL.Path,
			"error", recovered,
			"request", maskAuthorization(string(request)))

		utils.Problem(c, http.StatusInternalServerError, "internal server error")
		c.Abort()
	})
}

// checkBrokenConnection reports whether the panic came from writing to a
// connection the client already closed.
func checkBrokenConnection(recovered interface{}) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr.Err, &sysErr) {
		return false
	}
	return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
}

// maskAuthorization hides credentials in a dumped request before logging.
func maskAuthorization(request string) string {
	lines := strings.Split(request, "\r\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "authorization:") {
			lines[i] = "Authorization: *"
		}
	}
	return strings.Join(lines, "\r\n")
}
