// Command vhictl downloads, inspects, exports and publishes VHI source data
// outside the dashboard server.
package main

func main() {
	Execute()
}
