// SPDX-License-Identifier: MPL-2.0

package usermeta

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrInvalidGrant is the sentinel error wrapped by InvalidGrantError.
var ErrInvalidGrant = errors.New("invalid grant")

const (
	GrantNone                      Grant = "none"
	GrantUnsafeWindow              Grant = "unsafeWindow"
	GrantWindowClose               Grant = "window.close"
	GrantWindowFocus               Grant = "window.focus"
	GrantWindowOnURLChange         Grant = "window.onurlchange"
	GrantAddElement                Grant = "GM_addElement"
	GrantAddStyle                  Grant = "GM_addStyle"
	GrantAddValueChangeListener    Grant = "GM_addValueChangeListener"
	GrantCookie                    Grant = "GM_cookie"
	GrantDeleteValue               Grant = "GM_deleteValue"
	GrantDeleteValues              Grant = "GM_deleteValues"
	GrantDownload                  Grant = "GM_download"
	GrantGetResourceText           Grant = "GM_getResourceText"
	GrantGetResourceURL            Grant = "GM_getResourceURL"
	GrantGetTab                    Grant = "GM_getTab"
	GrantGetTabs                   Grant = "GM_getTabs"
	GrantGetValue                  Grant = "GM_getValue"
	GrantGetValues                 Grant = "GM_getValues"
	GrantInfo                      Grant = "GM_info"
	GrantListValues                Grant = "GM_listValues"
	GrantLog                       Grant = "GM_log"
	GrantNotification              Grant = "GM_notification"
	GrantOpenInTab                 Grant = "GM_openInTab"
	GrantRegisterMenuCommand       Grant = "GM_registerMenuCommand"
	GrantRemoveValueChangeListener Grant = "GM_removeValueChangeListener"
	GrantSaveTab                   Grant = "GM_saveTab"
	GrantSetClipboard              Grant = "GM_setClipboard"
	GrantSetValue                  Grant = "GM_setValue"
	GrantSetValues                 Grant = "GM_setValues"
	GrantUnregisterMenuCommand     Grant = "GM_unregisterMenuCommand"
	GrantWebRequest                Grant = "GM_webRequest"
	GrantXMLHTTPRequest            Grant = "GM_xmlhttpRequest"

	// GM.* are the promise-based variants of the GM_* APIs.
	GrantAsyncAddElement          Grant = "GM.addElement"
	GrantAsyncAddStyle            Grant = "GM.addStyle"
	GrantAsyncDeleteValue         Grant = "GM.deleteValue"
	GrantAsyncGetResourceURL      Grant = "GM.getResourceUrl"
	GrantAsyncGetValue            Grant = "GM.getValue"
	GrantAsyncInfo                Grant = "GM.info"
	GrantAsyncListValues          Grant = "GM.listValues"
	GrantAsyncNotification        Grant = "GM.notification"
	GrantAsyncOpenInTab           Grant = "GM.openInTab"
	GrantAsyncRegisterMenuCommand Grant = "GM.registerMenuCommand"
	GrantAsyncSetClipboard        Grant = "GM.setClipboard"
	GrantAsyncSetValue            Grant = "GM.setValue"
	GrantAsyncXMLHTTPRequest      Grant = "GM.xmlHttpRequest"
)

// knownGrants is the closed set of permission tokens accepted in metadata.
var knownGrants = []Grant{
	GrantNone,
	GrantUnsafeWindow,
	GrantWindowClose,
	GrantWindowFocus,
	GrantWindowOnURLChange,
	GrantAddElement,
	GrantAddStyle,
	GrantAddValueChangeListener,
	GrantCookie,
	GrantDeleteValue,
	GrantDeleteValues,
	GrantDownload,
	GrantGetResourceText,
	GrantGetResourceURL,
	GrantGetTab,
	GrantGetTabs,
	GrantGetValue,
	GrantGetValues,
	GrantInfo,
	GrantListValues,
	GrantLog,
	GrantNotification,
	GrantOpenInTab,
	GrantRegisterMenuCommand,
	GrantRemoveValueChangeListener,
	GrantSaveTab,
	GrantSetClipboard,
	GrantSetValue,
	GrantSetValues,
	GrantUnregisterMenuCommand,
	GrantWebRequest,
	GrantXMLHTTPRequest,
	GrantAsyncAddElement,
	GrantAsyncAddStyle,
	GrantAsyncDeleteValue,
	GrantAsyncGetResourceURL,
	GrantAsyncGetValue,
	GrantAsyncInfo,
	GrantAsyncListValues,
	GrantAsyncNotification,
	GrantAsyncOpenInTab,
	GrantAsyncRegisterMenuCommand,
	GrantAsyncSetClipboard,
	GrantAsyncSetValue,
	GrantAsyncXMLHTTPRequest,
}

type (
	// Grant is a permission token requested in the userscript header,
	// giving the script access to a manager-provided API.
	Grant string

	// InvalidGrantError is returned when a Grant is not a member of the
	// known grant set. It wraps ErrInvalidGrant for errors.Is() compatibility.
	InvalidGrantError struct {
		Value Grant
	}
)

// String returns the string representation of the Grant.
func (g Grant) String() string { return string(g) }

// IsValid returns whether the Grant is a member of the known grant set.
func (g Grant) IsValid() (bool, []error) {
	if slices.Contains(knownGrants, g) {
		return true, nil
	}
	return false, []error{&InvalidGrantError{Value: g}}
}

// Error implements the error interface for InvalidGrantError.
func (e *InvalidGrantError) Error() string {
	return fmt.Sprintf("unknown grant %q", e.Value)
}

// Unwrap returns ErrInvalidGrant for errors.Is() compatibility.
func (e *InvalidGrantError) Unwrap() error { return ErrInvalidGrant }

// KnownGrants returns a copy of the accepted grant tokens.
func KnownGrants() []Grant {
	return slices.Clone(knownGrants)
}
