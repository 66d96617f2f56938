// Package domain contains the core business entities of the task manager:
// users, roles and permissions, tasks and their statuses, and the list
// pagination types shared by every list endpoint. It is independent of any
// storage or delivery mechanism.
package domain
