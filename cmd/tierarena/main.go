// Command tierarena inspects and exercises the tiered arena allocator.
package main

func main() {
	execute()
}
