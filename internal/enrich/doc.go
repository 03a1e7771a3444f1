// Package enrich resolves discovery candidates against the fileset metadata
// service and writes classified, pending inventory records. Classification is
// derived once here and never recomputed downstream.
package enrich
