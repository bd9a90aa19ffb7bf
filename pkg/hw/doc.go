// Package hw binds the keyboard core to real hardware: the radio UART,
// GPIO lines, an APA102 LED chain and a websocket LED preview.
package hw
