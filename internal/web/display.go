package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Display is the shared-screen page. It subscribes as a driver and swaps in
// the html fragments pushed over the websocket.
func Display(quizID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Wavespace</title>
  </head>
  <body data-quiz-id="`+esc(quizID)+`">
    <div id="status"></div>
    <script>
      const quizID = document.body.dataset.quizId;
      function connect() {
        const scheme = location.protocol === "https:" ? "wss" : "ws";
        const socket = new WebSocket(scheme + "://" + location.host + "/ws/quizzes/" + encodeURIComponent(quizID) + "?role=driver");
        socket.onmessage = (event) => {
          const message = JSON.parse(event.data);
          if (message.type !== "html") {
            return;
          }
          const target = document.querySelector(message.target);
          if (target) {
            target.innerHTML = message.html;
          }
        };
        socket.onclose = () => setTimeout(connect, 1000);
      }
      connect();
      setInterval(() => {
        const timer = document.querySelector("[data-ends-at]");
        if (!timer) {
          return;
        }
        const left = Math.max(0, Math.ceil((Date.parse(timer.dataset.endsAt) - Date.now()) / 1000));
        timer.textContent = left + "s";
      }, 250);
    </script>
  </body>
</html>
`)
		return err
	})
}
