// SPDX-License-Identifier: MPL-2.0

// Package userscript generates the metadata header block that userscript
// managers (Tampermonkey, Violentmonkey, Greasemonkey) parse.
//
// The rendered header is a compatibility contract:
//
//	// ==UserScript==
//	// @name         Acme - Widget
//	// @namespace    http://tampermonkey.net/
//	// ...
//	// ==/UserScript==
//
// Header values are derived from already validated metadata and are never
// mutated after construction.
package userscript
