package shell

import (
	"fmt"
	"io"
)

// writeHMRClient implements §4.D step 8: a postMessage subscriber that
// applies CSS hot-swap, batches JS hot-reload, and falls back to a full
// reload for anything else.
func (s *Synthesizer) writeHMRClient(w io.Writer) error {
	_, err := fmt.Fprintf(w, hmrClientTemplate, jsString(s.cfg.HMRChannelTag))
	return err
}

const hmrClientTemplate = `  <script type="module">
    (function () {
      const channel = %s;
      let pending = [];
      let flushTimer = null;

      function flush() {
        const updates = pending;
        pending = [];
        flushTimer = null;
        for (const update of updates) {
          const url = new URL(update.path, window.location.origin);
          url.searchParams.set("t", String(update.timestamp));
          import(url.toString()).then(() => {
            window.$RefreshRuntime$ && window.$RefreshRuntime$.performReactRefresh();
          });
        }
      }

      function handleMessage(msg) {
        if (!msg || msg.channel !== channel) return;

        if (msg.type === "full-reload") {
          window.location.reload();
          return;
        }

        if (msg.type !== "update") return;

        if (msg.path && msg.path.endsWith(".css")) {
          const links = document.querySelectorAll('link[rel="stylesheet"]');
          links.forEach(function (link) {
            if (link.href.indexOf(msg.path) !== -1) {
              const url = new URL(link.href);
              url.searchParams.set("t", String(msg.timestamp));
              link.href = url.toString();
            }
          });
          return;
        }

        pending.push(msg);
        if (flushTimer === null) {
          flushTimer = window.setTimeout(flush, 30);
        }
      }

      // A message may arrive either via postMessage (when this document is
      // embedded by a host page that owns the websocket) or directly over
      // our own websocket connection to the HMR front door.
      window.addEventListener("message", function (event) {
        handleMessage(event.data);
      });

      function connect() {
        const proto = window.location.protocol === "https:" ? "wss:" : "ws:";
        const ws = new WebSocket(proto + "//" + window.location.host + "/_hmr/ws");
        ws.addEventListener("message", function (event) {
          try {
            handleMessage(JSON.parse(event.data));
          } catch (e) {
            // ignore malformed frames
          }
        });
        ws.addEventListener("close", function () {
          window.setTimeout(connect, 1000);
        });
      }
      connect();
    })();
  </script>
`
