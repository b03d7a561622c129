// Package assets provides the document theme and shell template.
//
// Both are embedded at compile time:
//
//	styles/
//	└── classic.css        # the fixed visual theme
//	templates/
//	└── document.html      # the document shell (charset, title, body)
//
// The theme is deliberately not user-selectable. Asset names are still
// validated so a caller cannot read arbitrary files from the embedded tree.
package assets
