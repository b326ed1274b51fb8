// Package integrationtests runs graph files end to end through the app.
package integrationtests
