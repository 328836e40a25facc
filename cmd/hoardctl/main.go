// Command hoardctl inspects the superblock layout and exercises the
// superblock recycling layer under concurrent load.
package main

func main() {
	execute()
}
