// Package prof wires runtime profiling to CLI flags.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/cockroachdb/errors"
)

// Session holds the files of active profiles. The zero value is inert.
type Session struct {
	cpu     *os.File
	tracing *os.File
	memPath string
}

// Start enables whichever profiles have a non-empty path. The heap
// profile is written on Stop.
func Start(cpuPath, memPath, tracePath string) (*Session, error) {
	s := &Session{memPath: memPath}
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, errors.Wrap(err, "cpu profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "cpu profile")
		}
		s.cpu = f
	}
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			s.abort()
			return nil, errors.Wrap(err, "trace")
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.abort()
			return nil, errors.Wrap(err, "trace")
		}
		s.tracing = f
	}
	return s, nil
}

// Stop ends active profiles and writes the heap profile if requested.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
	if s.tracing != nil {
		trace.Stop()
		_ = s.tracing.Close()
		s.tracing = nil
	}
	if s.memPath == "" {
		return nil
	}
	path := s.memPath
	s.memPath = ""
	return writeMem(path)
}

// abort stops the profiles started so far without writing the heap profile.
func (s *Session) abort() {
	s.memPath = ""
	_ = s.Stop()
}

func writeMem(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "heap profile")
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "heap profile")
	}
	return f.Close()
}
