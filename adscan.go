// Package adscan provides a resilient crawl engine for detecting
// advertising-technology integrations across large URL lists. It drives a
// headless browser over arbitrary third-party sites and survives the failures
// inherent to that: DNS errors, bad certificates, hung pages, and crashed
// browser processes.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, goquery/).
package adscan
