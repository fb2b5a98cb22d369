package parquet

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the package-level structured logger used for non-fatal
// warnings, such as FromParquetMetadata encountering an unrecognized root
// element name. It defaults to logfmt-on-stderr and can be replaced by a
// host application that embeds this module in a larger service.
var Logger log.Logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))

func warn(msg string, keyvals ...any) {
	kv := append([]any{"msg", msg}, keyvals...)
	_ = level.Warn(Logger).Log(kv...)
}
