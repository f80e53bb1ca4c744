package debug

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/golang/glog"
)

// DefaultStatsAddress is where the runtime stats viewer listens by default
const DefaultStatsAddress = "localhost:12600"

const statsPath = "/debug/statsview"

// StatsServer serves Go runtime charts (heap, GC, goroutines) over HTTP
type StatsServer struct {
	addr string
	mgr  *statsview.ViewManager
}

// NewStatsServer configures a stats viewer on addr; an empty addr uses the
// default
func NewStatsServer(addr string) *StatsServer {
	if addr == "" {
		addr = DefaultStatsAddress
	}
	return &StatsServer{addr: addr}
}

// URL returns the address of the stats page
func (s *StatsServer) URL() string {
	return "http://" + s.addr + statsPath
}

// Start launches the viewer in a new goroutine
func (s *StatsServer) Start() {
	viewer.SetConfiguration(viewer.WithAddr(s.addr))
	mgr := statsview.New()
	s.mgr = mgr

	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Warningf("[DEBUG] stats server stopped: %v", err)
		}
	}()

	glog.Infof("[DEBUG] stats server available at %s", s.URL())
}

// Stop shuts the viewer down
func (s *StatsServer) Stop() {
	if s.mgr != nil {
		s.mgr.Stop()
		s.mgr = nil
	}
}
