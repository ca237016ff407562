package templates

// Names of the templates every Store provides.
const (
	LinkAbout    = "link-about"
	LinkResume   = "link-resume"
	LinkBlog     = "link-blog"
	LinkLinkedIn = "link-linkedin"
	LinkGitHub   = "link-github"
	LinkTwitter  = "link-twitter"
)

// DefaultLinks returns the built-in link templates. Their bodies are literal
// paths or URLs, referenced from page templates as {{template "link-about"}}.
func DefaultLinks() map[string]string {
	return map[string]string{
		LinkAbout:    "/about.html",
		LinkResume:   "/static/resume.pdf",
		LinkBlog:     "/blog-list.html",
		LinkLinkedIn: "https://www.linkedin.com/in/billliu1992/",
		LinkGitHub:   "https://github.com/billliu1992",
		LinkTwitter:  "https://twitter.com/bill_liu_il/",
	}
}
