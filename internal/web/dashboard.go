package web

// indexHTML polls the live window table and the per-app summaries with htmx
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>openbob</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg-primary: #f5f5f5;
            --bg-secondary: white;
            --text-primary: #333;
            --text-muted: #7f8c8d;
            --border-color: #eee;
            --accent-color: #3498db;
            --heading-color: #2c3e50;
            --shadow: rgba(0,0,0,0.1);
        }

        [data-theme="dark"] {
            --bg-primary: #1a1a1a;
            --bg-secondary: #2d2d2d;
            --text-primary: #e0e0e0;
            --text-muted: #a0a0a0;
            --border-color: #404040;
            --accent-color: #5dade2;
            --heading-color: #5dade2;
            --shadow: rgba(0,0,0,0.3);
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            padding: 20px;
        }

        .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 24px; }
        .header button { background: var(--bg-secondary); border: 2px solid var(--border-color); border-radius: 50px; padding: 6px 14px; cursor: pointer; }
        .dashboard { display: flex; gap: 20px; flex-wrap: wrap; }
        .box { flex: 1; min-width: 320px; background: var(--bg-secondary); border-radius: 8px; box-shadow: 0 2px 4px var(--shadow); padding: 20px; }
        .box h2 { color: var(--heading-color); border-bottom: 2px solid var(--accent-color); padding-bottom: 8px; margin-bottom: 12px; }
        table.windows { width: 100%; border-collapse: collapse; }
        table.windows td, table.windows th { text-align: left; padding: 6px; border-bottom: 1px solid var(--border-color); }
        tr.focused { font-weight: bold; color: var(--accent-color); }
        tr.closed { color: var(--text-muted); }
        .app-item { display: flex; justify-content: space-between; padding: 10px 8px; border-bottom: 1px solid var(--border-color); position: relative; }
        .app-item::before { content: ''; position: absolute; left: 0; top: 0; height: 100%; width: var(--bar-width, 0%); background: var(--accent-color); opacity: 0.2; z-index: 0; }
        .app-item > * { position: relative; z-index: 1; }
        .app-percentage { font-family: monospace; color: var(--text-muted); margin-left: 10px; }
        .total { margin-top: 12px; font-weight: bold; }
        .loading { color: var(--text-muted); }
    </style>
</head>
<body>
    <div class="header">
        <h1>openbob</h1>
        <button onclick="toggleTheme()">theme</button>
    </div>
    <div class="dashboard">
        <div class="box">
            <h2>Windows</h2>
            <div hx-get="/api/windows" hx-trigger="load, every 2s"><div class="loading">Loading...</div></div>
        </div>
        <div class="box">
            <h2>Today</h2>
            <div hx-get="/api/summary?period=day" hx-trigger="load, every 30s"><div class="loading">Loading...</div></div>
        </div>
        <div class="box">
            <h2>This Week</h2>
            <div hx-get="/api/summary?period=week" hx-trigger="load, every 60s"><div class="loading">Loading...</div></div>
        </div>
    </div>
    <script>
        function toggleTheme() {
            const next = document.documentElement.getAttribute('data-theme') === 'dark' ? 'light' : 'dark';
            document.documentElement.setAttribute('data-theme', next);
            localStorage.setItem('theme', next);
        }
        document.documentElement.setAttribute('data-theme', localStorage.getItem('theme') || 'light');
    </script>
</body>
</html>`
