/*
Package loginsuite is a browser end-to-end suite for the login practice
pages of https://practicetestautomation.com.

The suite drives a browser through one of two backends: a WebDriver session
(Selenium Grid, ChromeDriver or GeckoDriver) or a Chrome DevTools Protocol
session. Every check waits for the page with an explicit, bounded poll
rather than fixed sleeps:

	e, err := browser.WaitVisible(ctx, d, wait.Config{Timeout: 10 * time.Second}, site.WelcomeMessage)
	if err != nil {
		var te *wait.TimeoutError
		if errors.As(err, &te) {
			// te.Last tells whether the element was missing or hidden.
		}
		return err
	}

The packages are:

	wait         poll a predicate until it holds, the context ends or time runs out
	browser      the browser operations the suite needs and wait conditions on them
	browser/webdriver, browser/cdp
	             implementations of browser.Driver
	site         pages, locators and texts of the site, and local stand-ins for it
	scenario     the scenarios and a runner giving each one its own session
	cmd/loginsuite
	             command running the suite and reporting one line per scenario

The tests of this package run the scenarios in a real browser. They are
skipped unless a browser endpoint is given:

	go test -remote_url=http://localhost:4444/wd/hub
	go test -chrome_driver_path=/usr/local/bin/chromedriver
	go test -cdp
*/
package loginsuite
