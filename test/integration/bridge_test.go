// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/lifefork/lifefork/internal/bridge"
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/observability"
	"github.com/lifefork/lifefork/internal/sim"
)

var _ = Describe("HTTP bridge", func() {
	var (
		hub    *bridge.Hub
		server *observability.Server
		base   string
	)

	BeforeEach(func() {
		outputDir, err := os.MkdirTemp("", "lifefork-bridge-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = os.RemoveAll(outputDir) })

		hub = bridge.NewHub(bridge.DefaultBuffer)
		var handler *bridge.Handler
		server = observability.NewServer("127.0.0.1:0", func() bool { return handler.Ready() }, sim.RegisterMetrics)
		handler = bridge.NewHandler(config.BridgeConfig{AllowOrigin: "*", RunTimeout: time.Minute},
			func() (*config.Settings, error) { return settingsFor(outputDir, 5), nil },
			hub, bridge.WithMetrics(server.Metrics()))
		handler.Mount(server)

		_, err = server.Start()
		Expect(err).NotTo(HaveOccurred())
		base = "http://" + server.Addr()

		DeferCleanup(func() {
			hub.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			Expect(server.Stop(ctx)).To(Succeed())
		})
	})

	It("streams every layer of a requested run", func() {
		conn, resp, err := websocket.DefaultDialer.Dial("ws://"+server.Addr()+"/ws", nil)
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()
		DeferCleanup(func() { _ = conn.Close() })
		Eventually(hub.Len).Should(Equal(1))

		runResp, err := http.Post(base+"/run", "application/json", nil)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = runResp.Body.Close() }()
		Expect(runResp.StatusCode).To(Equal(http.StatusOK))

		var body bridge.RunResponse
		Expect(json.NewDecoder(runResp.Body).Decode(&body)).To(Succeed())
		Expect(body.Status).To(Equal("ok"))
		Expect(body.Scenarios).To(HaveLen(2))
		Expect(body.OutputDir).To(BeADirectory())

		frames := 0
		for frames < 10 {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, data, err := conn.ReadMessage()
			Expect(err).NotTo(HaveOccurred())
			var frame bridge.Frame
			Expect(json.Unmarshal(data, &frame)).To(Succeed())
			Expect(frame.RunID).To(Equal(body.RunID))
			Expect(frame.Worlds).NotTo(BeEmpty())
			frames++
		}
	})

	It("reports readiness and liveness", func() {
		for _, path := range []string{"/healthz/liveness", "/healthz/readiness"} {
			resp, err := http.Get(base + path)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK), path)
		}
	})
})
