package metrics

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
)

// SysHealth represents real-time system metrics.
type SysHealth struct {
	AllocMB        uint64
	SysMB          uint64
	NumGC          uint32
	Goroutines     int
	ActiveSessions int
	DataDiskSize   string
}

// GetSysHealth collects real-time health data. dataPath is the database file
// or session directory whose size is reported.
func GetSysHealth(dataPath string, activeSessions int) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SetActiveSessions(activeSessions)

	return SysHealth{
		AllocMB:        m.Alloc / 1024 / 1024,
		SysMB:          m.Sys / 1024 / 1024,
		NumGC:          m.NumGC,
		Goroutines:     runtime.NumGoroutine(),
		ActiveSessions: activeSessions,
		DataDiskSize:   humanize.Bytes(diskUsage(dataPath)),
	}
}

func diskUsage(path string) uint64 {
	var size uint64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}
		return nil
	})
	return size
}
