package external

import "fmt"

//go:generate go build -o external.a .
func ExternalFunc1() {
	fmt.Println("Called external_func1")
}

func ExternalFunc2() {
	fmt.Println("Called external_func2")
}
