package site

import (
	"html/template"
	"net/http"
	"time"

	"github.com/golang/glog"
)

// DefaultSubmitDelay is how long the replica login form takes to answer a
// click on Submit, like the script of the real page.
const DefaultSubmitDelay = 400 * time.Millisecond

// Handler serves a replica of the pages used by the suite, with
// DefaultSubmitDelay.
var Handler = NewHandler(DefaultSubmitDelay)

// NewHandler returns a replica of the site whose login form answers after
// submitDelay. Every path it does not know, the sample page included, gets
// the site's 404 page.
func NewHandler(submitDelay time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, loginPage, struct {
			Title    string
			DelayMS  int64
			Username string
			Password string
			BadUser  string
			BadPass  string
			Success  string
		}{
			Title:    LoginTitle,
			DelayMS:  submitDelay.Milliseconds(),
			Username: Username,
			Password: Password,
			BadUser:  InvalidUsername,
			BadPass:  InvalidPassword,
			Success:  LoggedInPath,
		})
	})
	mux.HandleFunc(LoggedInPath, func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, loggedInPage, struct {
			Title, Heading, Logout string
		}{LoggedInTitle, WelcomeHeading, LoginPath})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("s"); q != "" {
			render(w, http.StatusOK, searchPage, struct {
				Title, Query string
			}{"You searched for " + q + " | Practice Test Automation", q})
			return
		}
		if r.URL.Path == "/" {
			render(w, http.StatusOK, homePage, struct{ Login string }{LoginPath})
			return
		}
		render(w, http.StatusNotFound, notFoundPage, struct {
			Title, Heading string
		}{NotFoundTitle, NotFoundHeading})
	})
	return mux
}

func render(w http.ResponseWriter, code int, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := t.Execute(w, data); err != nil {
		glog.Warningf("site: rendering %s: %v", t.Name(), err)
	}
}

var searchForm = `
<form role="search" method="get" class="search-form" action="/">
	<label><span class="screen-reader-text">Search for:</span>
	<input type="search" id="search-field" class="search-field" placeholder="Search &hellip;" value="" name="s" /></label>
	<input type="submit" class="search-submit" value="Search" />
</form>`

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.Title}}</title>
	<style>
		#error { display: none; }
		#error.show { display: block; }
	</style>
</head>
<body>
<div id="main-container">
	<div id="login">
		<h2>Test login</h2>
		<div id="form">
			<div id="username-wrap"><label for="username">Username</label><input type="text" name="username" id="username" /></div>
			<div id="password-wrap"><label for="password">Password</label><input type="password" name="password" id="password" /></div>
			<button id="submit" class="btn">Submit</button>
		</div>
		<div id="error" class="error"></div>
	</div>
</div>
<script>
	document.getElementById("submit").addEventListener("click", function() {
		var user = document.getElementById("username").value;
		var pass = document.getElementById("password").value;
		var msg = document.getElementById("error");
		msg.classList.remove("show");
		setTimeout(function() {
			if (user !== {{.Username}}) {
				msg.textContent = {{.BadUser}};
				msg.classList.add("show");
			} else if (pass !== {{.Password}}) {
				msg.textContent = {{.BadPass}};
				msg.classList.add("show");
			} else {
				window.location.href = {{.Success}};
			}
		}, {{.DelayMS}});
	});
</script>
</body>
</html>
`))

var loggedInPage = template.Must(template.New("logged-in").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.Title}}</title>
</head>
<body>
<div id="main-container">
	<article>
		<h1 class="post-title">{{.Heading}}</h1>
		<div class="post-content">
			<p><strong>Congratulations student. You successfully logged in!</strong></p>
			<div class="wp-block-button"><a class="wp-block-button__link" href="{{.Logout}}">Log out</a></div>
		</div>
	</article>
</div>
</body>
</html>
`))

var notFoundPage = template.Must(template.New("not-found").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.Title}}</title>
</head>
<body>
<div id="main-container">
	<h1 class="post-title">{{.Heading}}</h1>
	<p>It looks like nothing was found at this location. Maybe try a search?</p>` + searchForm + `
</div>
</body>
</html>
`))

var searchPage = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>{{.Title}}</title>
</head>
<body>
<div id="main-container">
	<h1 class="page-title">No search results for "{{.Query}}"</h1>
	<p>Sorry, but nothing matched your search terms.</p>` + searchForm + `
</div>
</body>
</html>
`))

var homePage = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>Practice Test Automation</title>
</head>
<body>
<div id="main-container">
	<a href="{{.Login}}">Test Login Page</a>
</div>
</body>
</html>
`))
