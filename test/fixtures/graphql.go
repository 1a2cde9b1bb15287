// Package fixtures provides canned upstream payloads for tests.
package fixtures

// GraphQLSidecar returns a query response for a carousel post with an image,
// a video with all URLs, and a video missing video_url and thumbnail_src.
func GraphQLSidecar() string {
	return `{
  "data": {
    "xdt_shortcode_media": {
      "__typename": "XDTGraphSidecar",
      "shortcode": "C8xYz12AbCd",
      "owner": {"username": "alice"},
      "edge_media_to_caption": {"edges": [{"node": {"text": "beach day"}}]},
      "display_url": "https://cdn.example.com/cover.jpg",
      "edge_sidecar_to_children": {
        "edges": [
          {"node": {"__typename": "XDTGraphImage", "display_url": "https://cdn.example.com/1.jpg", "is_video": false}},
          {"node": {"__typename": "XDTGraphVideo", "display_url": "https://cdn.example.com/2.jpg", "thumbnail_src": "https://cdn.example.com/2-thumb.jpg", "video_url": "https://cdn.example.com/2.mp4", "is_video": true}},
          {"node": {"__typename": "XDTGraphImage", "display_url": "https://cdn.example.com/3.jpg", "is_video": true}}
        ]
      }
    }
  },
  "status": "ok"
}`
}

// GraphQLSingleImage returns a query response for a single image post
// without owner or caption.
func GraphQLSingleImage() string {
	return `{
  "data": {
    "xdt_shortcode_media": {
      "__typename": "XDTGraphImage",
      "display_url": "https://cdn.example.com/single.jpg",
      "is_video": false,
      "edge_media_to_caption": {"edges": []}
    }
  },
  "status": "ok"
}`
}

// GraphQLSingleVideo returns a query response for a reel.
func GraphQLSingleVideo() string {
	return `{
  "data": {
    "xdt_shortcode_media": {
      "__typename": "XDTGraphVideo",
      "owner": {"username": "bob"},
      "edge_media_to_caption": {"edges": [{"node": {"text": "a very long caption about nothing"}}]},
      "display_url": "https://cdn.example.com/reel.jpg",
      "thumbnail_src": "https://cdn.example.com/reel-thumb.jpg",
      "video_url": "https://cdn.example.com/reel.mp4",
      "is_video": true
    }
  },
  "status": "ok"
}`
}

// GraphQLEmptySidecar returns a query response for a carousel post whose
// children list is empty.
func GraphQLEmptySidecar() string {
	return `{
  "data": {
    "xdt_shortcode_media": {
      "__typename": "XDTGraphSidecar",
      "owner": {"username": "alice"},
      "edge_media_to_caption": {"edges": []},
      "display_url": "https://cdn.example.com/cover.jpg",
      "edge_sidecar_to_children": {"edges": []}
    }
  },
  "status": "ok"
}`
}

// GraphQLNotFound returns a query response whose post node is null.
func GraphQLNotFound() string {
	return `{"data": {"xdt_shortcode_media": null}, "status": "ok"}`
}

// GraphQLEmptyData returns a query response without any post node key.
func GraphQLEmptyData() string {
	return `{"data": {}, "status": "ok"}`
}
