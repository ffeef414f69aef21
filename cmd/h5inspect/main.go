// Command h5inspect lists and prints the datasets of an h5store container
// and converts containers to and from array documents.
package main

func main() {
	Execute()
}
