package dispatch

import (
	"encoding/json"
	"net/url"
	"sync"
)

// LegacyRequest is the mock `req` object built for legacy-style handlers
// (§4.E.2): URL-parsed query, parsed cookies, JSON-parsed body.
type LegacyRequest struct {
	Method  string
	URL     string
	Query   url.Values
	Cookies map[string]string
	Headers map[string]string
	Body    []byte
	JSON    any // set when Body parses as JSON
}

func newLegacyRequest(req Request) *LegacyRequest {
	lr := &LegacyRequest{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Headers,
		Body:    req.Body,
		Cookies: parseCookies(req.Headers["Cookie"]),
	}
	if u, err := url.Parse(req.URL); err == nil {
		lr.Query = u.Query()
	} else {
		lr.Query = url.Values{}
	}
	if len(req.Body) > 0 {
		var v any
		if err := json.Unmarshal(req.Body, &v); err == nil {
			lr.JSON = v
		}
	}
	return lr
}

func parseCookies(header string) map[string]string {
	cookies := map[string]string{}
	if header == "" {
		return cookies
	}
	for _, part := range splitSemicolon(header) {
		k, v := splitOnce(part, '=')
		if k != "" {
			cookies[trimSpace(k)] = trimSpace(v)
		}
	}
	return cookies
}

// ResSink is the mock `res` object of §4.E.2: a response sink with
// status/setHeader/getHeader/write/json/send/end/redirect, plus the
// internal isEnded/waitForEnd the dispatcher uses to know when the
// handler is done. In streaming mode, headers are flushed to onStart on
// the first of write/json/send/end/redirect (§4.E.2 "streaming
// variant").
type ResSink struct {
	mu sync.Mutex

	status      int
	headers     map[string]string
	headersSent bool
	ended       bool

	onStart func(status int, headers map[string]string)
	onChunk func(chunk []byte)
	onEnd   func()

	done     chan struct{}
	doneOnce sync.Once
}

// newResSink constructs a ResSink. onStart/onChunk/onEnd are always
// non-nil; callers in unary mode supply buffering implementations, and
// callers in streaming mode pass the request's StreamCallbacks through.
func newResSink(onStart func(int, map[string]string), onChunk func([]byte), onEnd func()) *ResSink {
	return &ResSink{
		status:  200,
		headers: map[string]string{},
		onStart: onStart,
		onChunk: onChunk,
		onEnd:   onEnd,
		done:    make(chan struct{}),
	}
}

func (r *ResSink) Status(code int) *ResSink {
	r.mu.Lock()
	r.status = code
	r.mu.Unlock()
	return r
}

func (r *ResSink) SetHeader(key, value string) {
	r.mu.Lock()
	r.headers[key] = value
	r.mu.Unlock()
}

func (r *ResSink) GetHeader(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headers[key]
}

func (r *ResSink) HeadersSent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headersSent
}

// flushHeaders sends headers to onStart exactly once, before any chunk
// (§4.E.2 invariant).
func (r *ResSink) flushHeaders() {
	r.mu.Lock()
	if r.headersSent {
		r.mu.Unlock()
		return
	}
	r.headersSent = true
	status, headers := r.status, copyHeaders(r.headers)
	r.mu.Unlock()
	r.onStart(status, headers)
}

// Write sends chunk to onChunk, flushing headers first. A Write after End
// (or after Detach) is dropped, so no chunk ever follows onEnd.
func (r *ResSink) Write(chunk []byte) {
	r.mu.Lock()
	ended := r.ended
	r.mu.Unlock()
	if ended {
		return
	}
	r.flushHeaders()
	r.onChunk(chunk)
}

func (r *ResSink) JSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"error":"failed to encode response"}`)
	}
	r.SetHeader("Content-Type", "application/json; charset=utf-8")
	r.Write(data)
	r.End()
}

func (r *ResSink) Send(body []byte) {
	r.Write(body)
	r.End()
}

func (r *ResSink) Redirect(status int, location string) {
	r.Status(status)
	r.SetHeader("Location", location)
	r.flushHeaders()
	r.End()
}

func (r *ResSink) End() {
	r.mu.Lock()
	if r.ended {
		r.mu.Unlock()
		return
	}
	r.ended = true
	r.mu.Unlock()
	r.flushHeaders()
	r.onEnd()
	r.doneOnce.Do(func() { close(r.done) })
}

// Detach disconnects the sink from its onStart/onChunk/onEnd callbacks and
// marks it ended, without invoking them. The caller uses this when it has
// already given up on the handler (timeout, canceled context) and
// delivered its own response: the handler goroutine may still be running,
// and without this it could later call Write/End and drive the caller's
// callbacks a second time, out of order.
func (r *ResSink) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headersSent = true
	r.ended = true
	r.onStart = func(int, map[string]string) {}
	r.onChunk = func([]byte) {}
	r.onEnd = func() {}
}

func (r *ResSink) IsEnded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

// WaitForEnd returns a channel that is closed when End is called;
// callers select on it alongside a timer (§4.E.2 "wait up to 30 seconds
// for end"). Detach does not close it.
func (r *ResSink) WaitForEnd() <-chan struct{} {
	return r.done
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func splitSemicolon(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitOnce(s string, sep byte) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
