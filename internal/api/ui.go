package api

// Version is reported by the health endpoint.
const Version = "0.1.0"

// indexHTML is the capture shell. Its title contains "WindowShot" so the
// browser window showing it is never listed as a capture target.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>WindowShot</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            max-width: 640px;
            margin: 40px auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .container {
            background: white;
            padding: 24px 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 { color: #333; margin-top: 0; }
        .row { display: flex; gap: 8px; margin: 12px 0; align-items: center; }
        select, input { flex: 1; padding: 6px; }
        button { padding: 6px 14px; cursor: pointer; }
        #status { padding: 10px; margin: 16px 0; border-left: 4px solid #9e9e9e; background: #fafafa; }
        #status.info { border-color: #1976d2; background: #e3f2fd; }
        #status.success { border-color: #4caf50; background: #e8f5e9; }
        #status.error { border-color: #e53935; background: #ffebee; }
        #thumb { max-width: 100%; display: none; border: 1px solid #ddd; }
        code { background: #f5f5f5; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>WindowShot</h1>
        <div class="row">
            <select id="windows"></select>
            <button id="refresh">Refresh</button>
        </div>
        <div class="row">
            <button id="capture">Capture</button>
            <button id="auto">Start auto (10s)</button>
        </div>
        <div class="row">
            <input id="savedir" type="text">
            <button id="setdir">Set folder</button>
            <button id="open">Open folder</button>
        </div>
        <div id="status">Ready</div>
        <img id="thumb" alt="latest capture">
    </div>
    <script>
    const $ = (id) => document.getElementById(id);

    async function call(method, path, body) {
        const opts = { method, headers: { 'Content-Type': 'application/json' } };
        if (body !== undefined) opts.body = JSON.stringify(body);
        const res = await fetch(path, opts);
        return res.json().catch(() => ({}));
    }

    function renderWindows(data) {
        const sel = $('windows');
        sel.innerHTML = '';
        (data.windows || []).forEach(w => {
            const opt = document.createElement('option');
            opt.value = w.title;
            opt.textContent = w.title;
            opt.selected = w.title === data.selected;
            sel.appendChild(opt);
        });
    }

    function renderStatus(st) {
        const el = $('status');
        el.textContent = st.text;
        el.className = st.level || 'idle';
        if (st.level === 'success') {
            const img = $('thumb');
            img.src = '/api/captures/latest/thumbnail?t=' + Date.now();
            img.style.display = 'block';
        }
    }

    function renderAuto(on) {
        $('auto').textContent = on ? 'Stop auto' : 'Start auto (10s)';
    }

    $('refresh').onclick = async () => renderWindows(await call('POST', '/api/windows/refresh'));
    $('windows').onchange = () => call('PUT', '/api/selection', { title: $('windows').value });
    $('capture').onclick = () => call('POST', '/api/capture', { title: $('windows').value });
    $('auto').onclick = async () => renderAuto((await call('POST', '/api/auto/toggle')).auto_capturing);
    $('setdir').onclick = async () => {
        const res = await call('PUT', '/api/save-dir', { dir: $('savedir').value });
        if (res.error) renderStatus({ level: 'error', text: res.error });
    };
    $('open').onclick = () => call('POST', '/api/open-folder');

    (async () => {
        renderWindows(await call('POST', '/api/windows/refresh'));
        const st = await call('GET', '/api/status');
        renderStatus(st);
        renderAuto(st.auto_capturing);
        $('savedir').value = st.save_dir || '';
    })();

    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/api/status/stream');
    ws.onmessage = (ev) => renderStatus(JSON.parse(ev.data));
    </script>
</body>
</html>`
