// Package service provides application-level services for managing tasks,
// categories, and users. Services coordinate the domain and store layers:
// they resolve relative filters against the clock, enforce ownership
// scoping, and run multi-step writes inside database transactions.
package service
