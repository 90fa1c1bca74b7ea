package web

import "html/template"

type sharePageData struct {
	Name string
	URL  string
}

// sharePage is the public landing page for an image link. The content is
// set as a background so the browser letterboxes it without scrollbars.
var sharePage = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta property="og:title" content="{{.Name}}">
<meta property="og:image" content="{{.URL}}">
<title>{{.Name}}</title>
<style>
html, body {
	margin: 0;
	height: 100%;
	background-color: #0e0e0e;
}
body {
	background-image: url("{{.URL}}");
	background-position: center;
	background-repeat: no-repeat;
	background-size: contain;
}
</style>
</head>
<body></body>
</html>
`))

// sharexConfigFormat is an importable ShareX custom-uploader definition.
// The two placeholders are the public base URL and the caller's token.
const sharexConfigFormat = `{
  "Version": "13.7.0",
  "Name": "image-cloud",
  "DestinationType": "ImageUploader",
  "RequestMethod": "POST",
  "RequestURL": "%[1]s/images/upload",
  "Headers": {
    "Authorization": "%[2]s"
  },
  "Body": "MultipartFormData",
  "FileFormName": "file",
  "URL": "{json:url}",
  "DeletionURL": "{json:deletion_url}",
  "ErrorMessage": "{json:message}"
}
`
