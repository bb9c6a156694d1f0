package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/pin-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"celsius": func(tenths int) string {
		return fmt.Sprintf("%d.%d °C", tenths/10, tenths%10)
	},
	"clock": func(t time.Time) string {
		return t.UTC().Format("15:04:05")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Pin Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.diag { color: #a00; }
</style>
</head>
<body>
<h1>Pin Controller</h1>

<h2>State</h2>
<table>
<tr><th>Application</th><td id="app-state">{{.State}}</td></tr>
<tr><th>Status LED</th><td id="led-state" class="{{if .LED}}on{{else}}off{{end}}">{{if .LED}}ON{{else}}OFF{{end}}</td></tr>
<tr><th>Temperature</th><td id="temperature">{{if .HasTemperature}}{{celsius .Temperature}}{{else}}n/a{{end}}</td></tr>
<tr><th>Button presses</th><td>{{.ButtonPresses}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Client ID</th><td>{{.Config.ClientID}}</td></tr>
<tr><th>Reconnect attempts</th><td>{{.ReconnectAttempts}} / {{.Config.MaxReconnectAttempts}}</td></tr>
</table>

<h2>Pins</h2>
<table>
<tr><th>Pin</th><td><b>Kind / Direction = Value</b></td></tr>
{{range .Pins}}<tr><th>{{.Number}}</th><td>{{.Kind}} / {{.Direction}} = {{.Value}}</td></tr>
{{else}}<tr><th>-</th><td>no pins registered</td></tr>
{{end}}</table>

{{if .Diagnostics}}<h2>Recent Errors</h2>
<table>
{{range .Diagnostics}}<tr><th>{{clock .Time}}</th><td class="diag">{{.Message}}</td></tr>
{{end}}</table>
{{end}}
<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
<tr><th>Restarts</th><td>{{.Restarts}}{{if .SessionID}} (session {{.SessionID}}){{end}}</td></tr>
<tr><th>Button mode</th><td>{{.Config.ButtonMode}}</td></tr>
{{if .Config.GPIOChip}}<tr><th>GPIO chip</th><td>{{.Config.GPIOChip}}</td></tr>{{end}}
</table>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
