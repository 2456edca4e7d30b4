// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/cyrivs-labs/lepton3vospi/lepton3"
	"github.com/maruel/interrupt"
	"golang.org/x/net/websocket"
)

// WebServer keeps a short ring buffer of recently captured frames and fans
// each new one out to every connected websocket client.
type WebServer struct {
	cond      sync.Cond
	frames    [9 * 10]*lepton3.Frame // 10 seconds worth of frames at 9fps.
	lastIndex int                    // Index of the most recent frame.
}

func (s *WebServer) AddFrame(f *lepton3.Frame) {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.lastIndex = (s.lastIndex + 1) % len(s.frames)
	s.frames[s.lastIndex] = f
	s.cond.Broadcast()
}

func StartWebServer(port int) *WebServer {
	s := &WebServer{
		cond:      *sync.NewCond(&sync.Mutex{}),
		lastIndex: -1,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.root)
	mux.Handle("/stream", websocket.Handler(s.stream))
	fmt.Printf("Listening on %d\n", port)
	go http.ListenAndServe(fmt.Sprintf(":%d", port), loggingHandler{mux})
	go func() {
		<-interrupt.Channel
		s.cond.Broadcast()
	}()
	return s
}

func (s *WebServer) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, rootHTML)
}

// stream sends every captured frame as metadata JSON followed by the raw
// 14 bit pixel data, base64 encoded, as a single websocket frame.
func (s *WebServer) stream(w *websocket.Conn) {
	log.Printf("websocket %s", w.Config().Origin)
	defer w.Close()
	lastIndex := 0
	buf := &bytes.Buffer{}
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	var err error
	for !interrupt.IsSet() && err == nil {
		s.cond.Wait()
		for ; !interrupt.IsSet() && err == nil && lastIndex != s.lastIndex; lastIndex = (lastIndex + 1) % len(s.frames) {
			f := s.frames[(lastIndex+1)%len(s.frames)]
			// Do the actual I/O without the lock.
			s.cond.L.Unlock()

			err = json.NewEncoder(buf).Encode(&f.Meta)
			if err == nil {
				buf.Write([]byte("\n"))
				encoder := base64.NewEncoder(base64.StdEncoding, buf)
				binary.Write(encoder, binary.BigEndian, f.Pix)
				encoder.Close()
			}
			if err == nil {
				_, err = w.Write(buf.Bytes())
			}
			buf.Reset()

			// To break out of the loop, the lock must be held.
			s.cond.L.Lock()
		}
	}
	if err == nil {
		log.Printf("websocket %s closed", w.Config().Origin)
	} else {
		log.Printf("websocket %s closed: %s", w.Config().Origin, err)
	}
}

const rootHTML = `<html>
<head><title>leptonstream</title></head>
<body>
<p>Connect a websocket client to <code>/stream</code> to receive frames as
they are captured. Each message is a line of JSON-encoded
vospi.FrameMeta, a newline, then the base64 encoding of the frame's raw
big-endian 14 bit pixels.</p>
</body>
</html>`

// Private details.

type loggingHandler struct {
	handler http.Handler
}

type loggingResponseWriter struct {
	http.ResponseWriter
	length int
	status int
}

func (l *loggingResponseWriter) Write(data []byte) (size int, err error) {
	size, err = l.ResponseWriter.Write(data)
	l.length += size
	return
}

func (l *loggingResponseWriter) WriteHeader(status int) {
	l.ResponseWriter.WriteHeader(status)
	l.status = status
}

// Hijack is needed for websocket.
func (l *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h := l.ResponseWriter.(http.Hijacker)
	return h.Hijack()
}

// ServeHTTP logs each HTTP request if -v is passed.
func (l loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lrw := &loggingResponseWriter{ResponseWriter: w}
	l.handler.ServeHTTP(lrw, r)
	log.Printf("%s - %3d %6db %4s %s\n", r.RemoteAddr, lrw.status, lrw.length, r.Method, r.RequestURI)
}
