// Package routing sorts validated dataset tarballs into their long-term
// landing zones. A static rule table keyed on data type and instrument maps
// each package to a destination template; sonar containers are extracted in
// place while trackline products are copied intact. Routing is the only
// stage that advances inventory records to pulled.
package routing
