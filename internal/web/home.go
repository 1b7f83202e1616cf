package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Wavespace</title>
  </head>
  <body>
    <main class="shell">
      <h1>Join a quiz</h1>
      <form id="joinForm">
        <input name="code" placeholder="Join code" autocomplete="off" maxlength="6" required/>
        <input name="nickname" placeholder="Nickname" maxlength="20" required/>
        <button type="submit">Join</button>
      </form>
      <div id="joinResult"></div>
    </main>
    <script>
      const joinForm = document.getElementById("joinForm");
      const joinResult = document.getElementById("joinResult");
      joinForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        joinResult.textContent = "Joining...";
        const res = await fetch("/api/join", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({
            join_code: joinForm.elements.code.value.trim().toUpperCase(),
            nickname: joinForm.elements.nickname.value.trim()
          })
        });
        const data = await res.json();
        if (!res.ok) {
          joinResult.textContent = data.message || data.error || "Could not join.";
          return;
        }
        sessionStorage.setItem("wavespace.token", data.token);
        joinResult.textContent = "Joined as participant " + data.participant_id + ".";
      });
    </script>
  </body>
</html>
`)
		return err
	})
}
