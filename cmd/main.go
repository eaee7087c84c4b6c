package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"sensor-recorder/controller"
	"sensor-recorder/metrics"
	"sensor-recorder/services/align"
	"sensor-recorder/utils"
	"sensor-recorder/views"
)

func main() {
	// ── CLI flags ────────────────────────────────────────────────────
	sensorsPath := flag.String("sensors", "config/sensors.yaml", "path to sensors.yaml")
	sessionPath := flag.String("session", "config/session.yaml", "path to session.yaml")
	logFile := flag.String("log", "", "optional JSON log file path (stdout is always included)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────
	logger := utils.InitLogger(utils.ParseLogLevel(*logLevel), *logFile)
	defer logger.Close()

	utils.L().Info("sensor-recorder  GOMAXPROCS=%d  PID=%d", runtime.GOMAXPROCS(0), os.Getpid())

	// ── Load configs ─────────────────────────────────────────────────
	sensorsCfg, err := utils.LoadSensorsConfig(*sensorsPath)
	if err != nil {
		utils.L().Fatal("load sensors config: %v", err)
	}
	sessionCfg, err := utils.LoadSessionConfig(*sessionPath)
	if err != nil {
		utils.L().Fatal("load session config: %v", err)
	}
	if !filepath.IsAbs(sessionCfg.Storage.BaseDir) {
		abs, _ := filepath.Abs(sessionCfg.Storage.BaseDir)
		sessionCfg.Storage.BaseDir = abs
	}

	// ── Context with OS signal cancellation ──────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ── Metrics + live feed ──────────────────────────────────────────
	m := metrics.New(prometheus.DefaultRegisterer)
	feed := views.NewLiveFeed()
	defer feed.Close()

	if addr := sessionCfg.HTTP.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/live", feed)
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.L().Error("http server: %v", err)
			}
		}()
		defer srv.Close()
		utils.L().Info("serving /metrics and /live on %s", addr)
	}

	// ── Pipeline assembly ────────────────────────────────────────────
	//
	//  sensor readers ──► bounded queues ──► AcquisitionController ──► Session
	//                                                                   │
	//                                        ring buffers (live) ◄──────┤
	//                                        history ──► align ──► RecordingController ──► CSV sheets

	sensorCtrl := controller.NewSensorsController(sensorsCfg)
	acqCtrl := controller.NewAcquisitionController(m)
	acqCtrl.Begin(controller.NewSession(sensorsCfg, time.Now()))
	acqCtrl.Start(ctx, sensorCtrl)

	recordCtrl := controller.NewRecordingController(sessionCfg.Storage, sensorsCfg.Sensors.Microphone.SampleRate, m)
	mode := align.ParseFillMode(sessionCfg.Storage.ExportMode)

	sched := controller.NewScheduler(sessionCfg.Timing, sensorCtrl)
	sched.Arm(ctx)
	utils.L().Info("acquisition starts in %dms (max run %dms)", sessionCfg.Timing.WaitMs, sessionCfg.Timing.MaxRunMs)

	// ── Terminal keys ────────────────────────────────────────────────
	var out io.Writer = os.Stdout
	keyCh := make(chan byte, 10)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if oldState, err := term.MakeRaw(fd); err == nil {
			defer term.Restore(fd, oldState)
			out = crlfWriter{os.Stdout}
			go readKeys(keyCh)
			fmt.Fprint(out, "keys: [p] pause/resume  [s] save  [q] quit\n")
		}
	}
	live := views.NewLiveView(out)

	refresh := time.Duration(sessionCfg.Timing.RefreshIntervalMs) * time.Millisecond
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	save := func() {
		snap, err := acqCtrl.Snapshot()
		if err != nil {
			utils.L().Error("snapshot: %v", err)
			return
		}
		// an unchanged session reuses the previous merge
		exp, err := recordCtrl.Prepare(snap, mode)
		if err != nil {
			utils.L().Error("save: %v", err)
			return
		}
		dir, err := recordCtrl.Write(exp)
		if err != nil {
			utils.L().Warn("save: %v (retrying)", err)
			if dir, err = recordCtrl.Write(exp); err != nil {
				utils.L().Error("save: %v", err)
				return
			}
		}
		logger.Zap().Infow("session saved",
			"dir", dir, "session", exp.SessionID.String(), "rows", len(exp.Rows), "mode", exp.Mode.String())
	}

	// ── Main event loop ──────────────────────────────────────────────
loop:
	for {
		select {
		case sig := <-sigCh:
			utils.L().Info("received signal: %v, shutting down", sig)
			break loop

		case <-ctx.Done():
			break loop

		case <-sched.Done():
			break loop

		case key := <-keyCh:
			switch key {
			case 'p', 'P', ' ':
				if err := sched.Toggle(); err != nil {
					utils.L().Warn("%v", err)
				}
			case 's', 'S':
				if sched.State() == controller.StateRunning {
					utils.L().Warn("pause before saving")
					continue
				}
				save()
			case 'q', 'Q', 3: // 3 = Ctrl+C in raw mode
				break loop
			}

		case <-ticker.C:
			acqCtrl.RecordDrops(sensorCtrl.Dropped())
			m.SetSessionActive(sched.State() == controller.StateRunning)

			st := acqCtrl.Live()
			st.State = sched.State().String()
			st.RemainingMs = sched.Remaining().Milliseconds()
			live.Render(st)
			feed.Broadcast(st)
		}
	}

	// ── Shutdown ─────────────────────────────────────────────────────
	sched.Finish()
	sensorCtrl.Dispose()
	select {
	case <-acqCtrl.Done():
	case <-time.After(2 * time.Second):
		utils.L().Warn("acquisition drain timed out")
	}
	m.SetSessionActive(false)
	sensorCtrl.LogStats()

	save()
	acqCtrl.End()
}

// readKeys forwards raw stdin bytes until stdin closes.
func readKeys(keyCh chan<- byte) {
	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			keyCh <- buf[i]
		}
	}
}

// crlfWriter restores line starts while the terminal is in raw mode.
type crlfWriter struct{ w io.Writer }

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(c.w, strings.ReplaceAll(string(p), "\n", "\r\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}
