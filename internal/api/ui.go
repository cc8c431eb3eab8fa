package api

import (
	"net/http"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>UPDL Engine - Publications</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: monospace;
            background: #1a1a2e;
            color: #eee;
            min-height: 100vh;
            display: flex;
            flex-direction: column;
        }
        header {
            background: #16213e;
            padding: 12px 20px;
            border-bottom: 1px solid #0f3460;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        header h1 { font-size: 16px; font-weight: normal; }
        #status { padding: 4px 10px; border-radius: 4px; font-size: 12px; }
        #status.connected { background: #1b4332; color: #95d5b2; }
        #status.disconnected { background: #7f1d1d; color: #fca5a5; }
        main { flex: 1; padding: 20px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #0f3460; font-size: 13px; }
        a { color: #74c0fc; }
        #log { max-height: 200px; overflow-y: auto; background: #0d0d1a; padding: 10px; font-size: 12px; }
    </style>
</head>
<body>
<header>
    <h1>UPDL Engine &mdash; Publications</h1>
    <span id="status" class="disconnected">disconnected</span>
</header>
<main>
    <table>
        <thead><tr><th>Project</th><th>Template</th><th>Technology</th><th>Created</th><th>Viewer</th></tr></thead>
        <tbody id="publications"></tbody>
    </table>
</main>
<div id="log"></div>
<script>
function loadPublications() {
    fetch('/api/publications').then(function (r) { return r.json(); }).then(function (pubs) {
        var tbody = document.getElementById('publications');
        tbody.innerHTML = '';
        (pubs || []).forEach(function (p) {
            var tr = document.createElement('tr');
            [p.projectName || '(untitled)', p.templateId, p.technology, p.createdAt].forEach(function (v) {
                var td = document.createElement('td');
                td.textContent = v;
                tr.appendChild(td);
            });
            var td = document.createElement('td');
            var a = document.createElement('a');
            a.href = '/p/' + p.slug;
            a.textContent = '/p/' + p.slug;
            td.appendChild(a);
            tr.appendChild(td);
            tbody.appendChild(tr);
        });
    });
}

function connect() {
    var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    var ws = new WebSocket(proto + '//' + location.host + '/ws/events');
    var status = document.getElementById('status');
    ws.onopen = function () { status.className = 'connected'; status.textContent = 'connected'; };
    ws.onclose = function () {
        status.className = 'disconnected';
        status.textContent = 'disconnected';
        setTimeout(connect, 2000);
    };
    ws.onmessage = function (msg) {
        var e = JSON.parse(msg.data);
        var line = document.createElement('div');
        line.textContent = e.ts + ' [' + e.level + '] ' + e.event + (e.msg ? ' - ' + e.msg : '');
        var log = document.getElementById('log');
        log.appendChild(line);
        log.scrollTop = log.scrollHeight;
        if (e.event === 'publication.created' || e.event === 'publication.deleted') {
            loadPublications();
        }
    };
}

loadPublications();
connect();
</script>
</body>
</html>
`

// indexHandler serves the publication overview page.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
