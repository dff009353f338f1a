package server

// clientScript is served at /livereload.js. It speaks the official-7
// protocol: hello on connect, then reload commands. CSS files are refreshed
// in place when a matching stylesheet link exists.
const clientScript = `(function () {
  if (typeof window === "undefined" || !window.WebSocket) { return; }
  var cur = document.currentScript;
  var origin = cur && cur.src ? new URL(cur.src) : window.location;
  var scheme = origin.protocol === "https:" ? "wss:" : "ws:";
  var ws = new WebSocket(scheme + "//" + origin.host + "/livereload");
  ws.onopen = function () {
    ws.send(JSON.stringify({ command: "hello", protocols: ["http://livereload.com/protocols/official-7"] }));
  };
  function refreshCSS(path) {
    var name = path.split("/").pop();
    var links = document.querySelectorAll("link[rel=stylesheet]");
    var hit = false;
    for (var i = 0; i < links.length; i++) {
      if (links[i].href.indexOf(name) === -1) { continue; }
      var u = new URL(links[i].href);
      u.searchParams.set("livereload", Date.now());
      links[i].href = u.toString();
      hit = true;
    }
    return hit;
  }
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.command !== "reload") { return; }
    if (msg.liveCSS && /\.css$/i.test(msg.path) && refreshCSS(msg.path)) { return; }
    window.location.reload();
  };
}());
`
