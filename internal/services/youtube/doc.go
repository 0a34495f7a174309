// Package youtube publishes rendered episodes as YouTube Shorts through
// the Data API v3, authenticating with an OAuth refresh token so scheduled
// headless runs never need a browser.
package youtube
