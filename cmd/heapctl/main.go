// Command heapctl replays allocation traces against the heapkit allocator
// and reports utilization and heap consistency.
package main

func main() {
	execute()
}
