// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify emails anomaly alerts.

Notify only enqueues. Run owns the SMTP connection: it dials on the first
message, reuses the connection for later ones and closes it after 30 seconds
without mail. A full queue drops the message with a warning.
*/
package notify
