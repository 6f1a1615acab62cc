package web

// Re-export types from subpackages so callers need a single import.
import (
	websocket "github.com/lcalzada-xor/wbands/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/wbands/internal/core/ports"
)

// WSManager is re-exported from the websocket subpackage
type WSManager = websocket.WSManager

// NewWSManager creates a new WSManager
func NewWSManager(service ports.ScanService, allowedOrigins ...string) *WSManager {
	return websocket.NewWSManager(service, allowedOrigins...)
}
