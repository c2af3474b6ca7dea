package main

import "firsttime/service"

func main() {
	service.Execute()
}
