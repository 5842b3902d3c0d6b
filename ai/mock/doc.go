// Package mock provides test doubles for the ai package interfaces.
package mock
