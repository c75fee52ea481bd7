// Package domain contains the core domain entities of the application:
// users, video jobs and their generated flashcards. Entities validate
// themselves and carry no persistence or transport concerns.
package domain
