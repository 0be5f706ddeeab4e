// Package udf implements spreadsheet custom functions (user-defined
// functions) served to Office.js clients.
//
// A Registry holds the functions. It produces the metadata JSON and the
// JavaScript glue code the add-in loads, and dispatches the calls the glue
// code posts back to the server.
package udf
