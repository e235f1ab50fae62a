package panel

// panelHTML is the tablet page: a twelve-lamp MFA replica that follows the
// SSE stream. Layout and colors mirror the physical panel.
const panelHTML = `<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>MFA Panel</title>
<style>
  body { background: #1a1a1a; color: #ddd; font-family: sans-serif; margin: 0; }
  h1 { font-size: 1.1em; text-align: center; padding: 0.6em 0 0; }
  #panel { display: grid; grid-template-columns: repeat(4, 1fr); gap: 14px;
           max-width: 640px; margin: 1em auto; padding: 0 14px; }
  .lamp { border: 2px solid #444; border-radius: 8px; text-align: center;
          padding: 18px 4px; background: #222; transition: background 80ms; }
  .lamp .cap { font-size: 1.2em; font-weight: bold; }
  .lamp .name { font-size: 0.7em; color: #888; margin-top: 4px; }
  .lamp.on.yellow { background: #b99000; color: #000; }
  .lamp.on.blue   { background: #1565c0; color: #fff; }
  .lamp.on.red    { background: #b71c1c; color: #fff; }
  #status { text-align: center; font-size: 0.75em; color: #666; }
</style>
</head>
<body>
<h1>MFA</h1>
<div id="panel"></div>
<div id="status">verbinden&hellip;</div>
<script>
const LAMPS = [
  ["Sifa","yellow","SIFA"],["Ende","yellow","LZB Ende"],["70","blue","PZB 70"],
  ["85","blue","PZB 85"],["55","blue","PZB 55"],["500Hz","red","500 Hz"],
  ["1000Hz","yellow","1000 Hz"],["T-L","yellow","Doors left"],
  ["T-R","yellow","Doors right"],["Ü","blue","LZB Ü"],
  ["G","blue","LZB G"],["S","red","LZB S"],
];
const panel = document.getElementById("panel");
const cells = LAMPS.map(([cap, color, name]) => {
  const div = document.createElement("div");
  div.className = "lamp " + color;
  div.innerHTML = '<div class="cap">' + cap + '</div><div class="name">' + name + '</div>';
  panel.appendChild(div);
  return div;
});
function setLamp(n, on) {
  cells[n - 1].classList.toggle("on", on === 1);
}
fetch("/state").then(r => r.json()).then(s => {
  s.lamps.forEach(l => setLamp(l.lamp, l.state));
});
const es = new EventSource("/stream");
es.onopen = () => document.getElementById("status").textContent = "verbunden";
es.onerror = () => document.getElementById("status").textContent = "getrennt";
es.onmessage = ev => {
  const u = JSON.parse(ev.data);
  setLamp(u.lamp, u.state);
};
</script>
</body>
</html>
`
