package fixtures

// EmbedPage returns static embed markup with a username, a caption that
// echoes the author on its first line and a comments hint.
func EmbedPage() string {
	return `<!DOCTYPE html>
<html>
<head><title>Instagram</title></head>
<body>
  <div class="Embed">
    <div class="Header">
      <a class="Avatar" href="https://www.instagram.com/alice/"><img src="https://cdn.example.com/avatar.jpg"></a>
      <div class="HeaderText"><a class="Username"><span class="UsernameText">alice</span></a></div>
    </div>
    <div class="EmbeddedMedia">
      <div class="_aagu"><img src="https://cdn.example.com/1.jpg"></div>
    </div>
    <div class="Caption">
      <a class="CaptionUsername" href="https://www.instagram.com/alice/">alice</a><br><br>
      sunset at the pier<br>#travel   #summer
      <div class="CaptionComments"><a href="#">View all 12 comments</a></div>
    </div>
    <script>window.__additionalData = {"caption": "should not leak"};</script>
  </div>
</body>
</html>`
}

// EmbedPageWithoutText returns embed markup lacking username and caption.
func EmbedPageWithoutText() string {
	return `<html><body><div class="EmbeddedMedia"><div class="_aagu"><img src="https://cdn.example.com/1.jpg"></div></div></body></html>`
}

// EmbedCarouselPage returns a self-contained embed page whose carousel is
// driven by script: an image, a video that only gets its src once Play is
// clicked, and a second image. The Next control disappears on the last slide.
func EmbedCarouselPage() string {
	return `<!DOCTYPE html>
<html>
<head>
<style>
  button, span.play { display: inline-block; width: 60px; height: 30px; }
  video, img { width: 100px; height: 100px; display: block; }
</style>
</head>
<body>
  <div class="Header"><span class="UsernameText">alice</span></div>
  <div class="Caption"><a class="CaptionUsername">alice</a><br><br>carousel day<div class="CaptionComments"><a>View all 3 comments</a></div></div>
  <ul id="slides"></ul>
  <div id="controls"></div>
  <script>
    var slides = [
      {kind: "img", src: "https://cdn.example.com/1.jpg"},
      {kind: "video", src: "https://cdn.example.com/2.mp4", poster: "https://cdn.example.com/2.jpg"},
      {kind: "img", src: "https://cdn.example.com/3.jpg"}
    ];
    var index = 0;
    function render() {
      var slide = slides[index];
      var list = document.getElementById("slides");
      if (slide.kind === "img") {
        list.innerHTML = '<li class="_adxi"><div class="_aagu"><img src="' + slide.src + '"></div></li>';
      } else {
        list.innerHTML = '<li class="_adxi"><div class="_aand"><video poster="' + slide.poster + '"></video></div>' +
          '<span class="play" aria-label="Play">play</span></li>';
        list.querySelector('[aria-label="Play"]').addEventListener("click", function () {
          setTimeout(function () { list.querySelector("video").setAttribute("src", slide.src); }, 50);
        });
      }
      var controls = document.getElementById("controls");
      controls.innerHTML = index < slides.length - 1 ? '<button aria-label="Next">next</button>' : "";
      if (controls.firstChild) {
        controls.firstChild.addEventListener("click", function () { index++; render(); });
      }
    }
    render();
  </script>
</body>
</html>`
}
