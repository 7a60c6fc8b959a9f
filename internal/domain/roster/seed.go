package roster

import "fmt"

// Built-in class list. Student ids within a class are the class prefix
// plus a 1-based position ("4A-1", "4A-2", ...), so the seed stores each
// roster as an ordered name list and expands ids on load.

type seedClass struct {
	id       string
	name     string
	teacher  string
	idPrefix string
	students []string
}

var seedClasses = []seedClass{
	{
		id: "4-A", name: "4 - A", teacher: "Padlin, M.Pd", idPrefix: "4A",
		students: []string{
			"Abharina Azzuhra", "Adila Naura Putri", "Adzkia Putri Syahira", "Dhini Haryani",
			"Eka Oktafia Khoirunisa", "Fadilah Septia Ningsih", "Fannani Mudzakkarotul Aulia",
			"Gianis Fenara", "Gishella Amanda Putri Galih", "Habibah Nurul Hadi", "Karmila Aini",
			"Kezia Afriliana", "Melanie Queensha Fitri", "Methasya Al Jauziyyah Wijaya",
			"Mia Ramadhani", "Mutiara Shafira", "Nilna Sabila Naja", "Nisrina Nuril Husna",
			"Nur Aqmarina Wafa", "Pelangi Adha Arrachmi", "Qalesya Aleya", "Qisya Nur Chayati",
			"Rania Alisha Kaili", "Salma Al-Maira Bahri", "Salwa Shofil Barokah", "Sifa Rahmania",
			"Siti Khalisha Putri Syamtika", "Siti Nur Laelatul Khoyimah", "Syafa Indana Zulfa",
			"Syafiqah Aura Setiawati", "Syahra Camelia", "Syifa Aulia Rohman", "Tiara Khoirussyifa",
		},
	},
	{
		id: "4-B", name: "4 - B", teacher: "Liyas Syarifudin, M.Pd", idPrefix: "4B",
		students: []string{
			"Alvyo Moreno Ditto", "Alif Muhammad Firdaus", "Andrea Algifari",
			"Aquillani Ahmad Carrendra", "Daffa Prasetia Ramadhan", "Fadli Rihadatul Aisy",
			"Fahmi Yusuf Ahmad", "Fathir Permana", "Fawwaz Rafif A", "Haidar Azzahwan",
			"Havid Saepudin", "Ikhwan Aditya", "Indra Mohammad Ferdiansyah",
			"Kautsar Iklil Mughni Yaziid", "Keynes Syailendra Santoso", "M. Pasya Azhar Khadafi",
			"M. Rafi Qoishul Azzam", "M. Rasya Azhar Khadafi", "Muhammad Faruq Ghozali",
			"Muhammad Jefry Kusnaidi", "Muhammad Zidan Al Ahdan", "Muhtadi Annaafi",
			"Rivaldo Setiawan", "Rizkian Aldiansyah",
		},
	},
	{
		id: "1-Int-Putra", name: "1-Intensif Putra", teacher: "Rendi Ramadhan, S.Pd", idPrefix: "1IPa",
		students: []string{
			"Darrell Luthfir Rahman", "Fahri Ginanjar Putra Ramadhan", "Haikal Adnan Fadhillah",
			"Latip Khaerul Ikhwan", "M. Wildan Sayyidushibyan", "Miftah Rusydilhaq",
			"Muhammad Rizik Nasrulloh", "Rahmat Baka Hadzlin", "Walid Ikhsan Nuril",
		},
	},
	{
		id: "1-Int-Putri", name: "1-Intensif Putri", teacher: "Nailul Kurni,S.Gz", idPrefix: "1IPi",
		students: []string{
			"Assyifa Adheska Putri Winata", "Azsyura Carizta Puteri", "Nabilla Tyas Khaydah",
			"Naisila Al Ramadhani", "Putri Bahraini Mustofa", "Salsabila Nadhifa Aqila",
			"Siti Duwi Zahrotusita", "Syifa Aulia Putri", "Tri Aisyah Sahilla", "Zhee Aurelia Alwi",
		},
	},
	{
		id: "5-A", name: "5 - A", teacher: "Rizki Karomah, S.Si", idPrefix: "5A",
		students: []string{
			"Afra Naila Arkana", "Ainurroviko", "Almira Andya Azrina", "Andin Marlianti",
			"Diniyatul Aliyah", "Elma Labibah", "Hanania Farras Thalita", "Khafifah",
			"Muhja Lita Adilla Saputri", "Nadya Aulia Rusnadi", "Nadya Qanita",
			"Nailatu Al Kamilah", "Pramita Putri", "Qurrotu 'Aini Al Jawwaadah",
			"Rheina Maulida Hakim", "Sheezy Zahirra Ghifara Mufti", "Sofi Amaliya", "Uty Andayani",
		},
	},
	{
		id: "5-B", name: "5 - B", teacher: "Barrirotul Choiriyah, S.EI", idPrefix: "5B",
		students: []string{
			"Aisah Salsabila", "Disty Zahra Amelia", "Elzha Laila Habiba", "Emiliyana Putri",
			"Fianatul Istiqomah", "Jihan Falihah", "Keyla Virginia", "Nailah Syahrin Ardani",
			"Najwa Fathia Hakim", "Putri Trisna Cahyaningrum", "Rizky Amelia", "Silviana Alista",
		},
	},
	{
		id: "5-C", name: "5 - C", teacher: "Mali, S.Pd", idPrefix: "5C",
		students: []string{
			"Ahmad Sopian", "Arfan Nurdiansyah", "Fachri Akbar Ajabar", "Faizal Abdul Aziz",
			"Ibrahim Algazali Ritonga", "Kieno Isnan Haqqi", "M. Aditya Juliansyah",
			"Mohammad Fadhlan Valeandro", "Muchammad Fatir Alfarizy", "Muhamad Haikal",
			"Muhamad Revan Al Farizi", "Muhammad Afnan Ratama", "Muhammad Hasbi",
			"Muhammad Iqbal Asykari", "Muhammad Zaki Alkidsi", "Muharriyansyah Harraki",
			"Rafi Alhakam Sadin", "Ragil Fadhilah", "Raihan Muftihurrizqi",
			"Ziyad Rachman Syafiq", "Muhammad Jalfi Al Farizi",
		},
	},
	{
		id: "5-D", name: "5 - D", teacher: "Muhammad Suhail, S.Pd", idPrefix: "5D",
		students: []string{
			"Ahmad Fadhlillah", "Alkiana Saputra", "Amir Husein", "Ananda Rizky Firdaus",
			"Ayyas Farhat Syamil", "Denis Aditiya Ramadhan", "Denis Putra Pratama",
			"Gilang Prananda", "Ibnu Zaki", "Miqyal Arsy", "Muhamad Rizky Fahreza",
			"Muhammad Fattan Agustio", "Muhammad Fazril", "Muhammad Firlli Alfiansyah",
			"Muhammad Iqbal Faturrahman", "Muhammad Rangga Mukni", "Muhammad Rayhan Munardi",
			"Muhammad Reifan Syawali Iswahyu", "Muhammad Zaenal Abidin", "Pahrurrozi Alqodir",
			"Pragia Aqmal Dastian", "Rizki Haikal Mustajib", "Surya Anggara Jati",
		},
	},
	{
		id: "2-Int-IPA", name: "2-Intensif IPA", teacher: "Lulu Zahrotunnisa, S.Pd", idPrefix: "2IPA",
		students: []string{
			"Adinda Rahma Auliya", "Bintang Cahaya Purnama", "Desyifa Aluna Rajwa",
			"Fazila Aprili Carisa", "Indah Octavia", "Khanza", "Sabna Isfalana Anjani",
			"Salsabila", "Tsabitah Agustin Syabani", "Akhyan Maarif Siregar",
			"Ananda Fachri Alfurqon", "Aqil Muzakki", "Arya Setiawan", "Muhammad Afif Nurhuda",
			"Raffi Achmad", "Reffan Ardiansyah Safari Pratama", "Wibawa Wiranata", "Willy Aldiansyah",
		},
	},
	{
		id: "2-Int-IPS", name: "2-Intensif IPS", teacher: "Khairil Fahmi, S.Pd", idPrefix: "2IPS",
		students: []string{
			"Aisyah Adelia Zahrainy", "Alya Vista Kinanti", "Annisa Lailatul Qodriah",
			"Dede Nazwa", "Ila Nurlaila", "Meuthia Tomayahu", "Nafa Askiya Hakika",
			"Sazkia Maulyda", "Zahrotulaini", "Abqory Wildani Ula", "Al Afgoni Fathurachman",
			"Farhan Andiyanto", "Farhan Holil", "Ifan Tri Yolanda", "Ikmal Haris",
			"Muhammad Zuhrizal Latif",
		},
	},
	{
		id: "6-A", name: "6 - A", teacher: "Rahmawati, M.Pd", idPrefix: "6A",
		students: []string{
			"Afra Nindita Salsabila", "Alya Fadila", "Ananda Zahra", "Angel Riau Anty",
			"Anisa Auliya", "Aprilia Amanda", "Chintya Ramadhani", "Elyza Nabilla Puspa",
			"Isabela Choerunnisa", "Keira Malika Alghaida", "Keysa Salma Zahra",
			"Meti Umi Nur Azizah", "Nabila Anzani", "Natasya Eisya Putri", "Nazwa Adhawiah Azzra",
			"Nurhilmi Zahra", "Nurul Pradani", "Rahmadanis Safitri", "Rahmah Aulia",
			"Sabrina Dianti Aulia", "Siti Sahlatun Najah", "Syafira Aisyah Maulida",
			"Zahira Nisa Syahidah", "Zakiya Rahmah",
		},
	},
	{
		id: "6-B", name: "6 - B", teacher: "Saleha Mufida, M.Han", idPrefix: "6B",
		students: []string{
			"Ainin Melati Karisya", "Alfi Lulu Ulhidayah", "Alika Zahrotussita",
			"Asyah Kamelia Ratu Insani", "Bilqis Suci Amalia", "Dava Alisia Susanti",
			"Dea Febriyani", "Dhea Aulia Futri", "Hanifa Rosdiyana Noer", "Ismi Halimatul Auliya",
			"Khaira Amira Azahra Putri", "Kiara Adistya", "Laska Bunga Fahira",
			"Laura Muazarotul U'lya", "Meidiesya Bilqis Azzahra", "Mirna Aulia Rahman",
			"Nadia Syafwah", "Nahya Putri", "Naila Hidayatul Uzma", "Najmi Laily",
			"Najwa Aisyatu Rahma", "Naysila Febrianti", "Raihanna Tazqia", "Siti Mutmainah",
			"Syaffa Aulia Az'Zahra", "Syefa Ramadani", "Yulianti", "Zahro Tussyifa",
		},
	},
	{
		id: "6-C", name: "6 - C", teacher: "Fadillah, S.Pd", idPrefix: "6C",
		students: []string{
			"Ahmad Fahlevi", "Ananda Syahrobi", "Bahi Daiman", "Dhaniel Saputra",
			"Fadilah Akbar Yudhistira", "Guruh Dwi Putra Ismail", "Hilman Bima Balebat",
			"Khoirul Umam", "Mochammad Rizki Junaedi", "Moh Ashrafuzzaman",
			"Muhamad Gibran Al Affan", "Muhammad Bintang Azhami", "Muhammad Fariz Ibrahim",
			"Muhammad Kaysa Awali", "Nabil Faadhil Rahman", "Oryza Satya Perkasa",
			"Rafa Putra Hastono", "Sulung Ahmad Baskoro", "Wardana Yasid Taolani",
		},
	},
	{
		id: "6-D", name: "6 - D", teacher: "Fadilah Abidana, M.Pd", idPrefix: "6D",
		students: []string{
			"Aditya Rangga", "Ahmad Imanullah", "Ahmad Reza Mufahir",
			"Ariza Faiz Sholahuddin Putra", "Daffa Muhammad Alghifary Mufti",
			"Fadhli Muhamad Al Baihaqi", "Farid Dwi Apriyanto", "Ibnu Thufail Mutarof",
			"Ihiya Ulumuddin", "Mahfud Syafei", "Mas Malieq Toreno Novansyach", "Muhamad Fachri",
			"Muhamad Zikri", "Muhammad Azka Anshory", "Muhammad Fadhil Rafi Nakhlah",
			"Muhammad Mulkis Sobirin", "Muhammad Nurfadillah", "Muhammad Zayyid Muhaymin",
			"Ferdiansyah Saputra", "Muhamad Daffa Almer", "Muhammad Nurfaisal", "Nauval Ardiansyah",
		},
	},
	{
		id: "3-Int-IPA", name: "3-Intensif IPA", teacher: "Sadam Hamzah, SHI", idPrefix: "3IPA",
		students: []string{
			"Annisa Putri Khayla", "Avifah Triutami", "Azka Anisa Ma'rifa",
			"Ermitha Zahra Fauziah", "Farah Azkia Bilqis", "Ratu Khanza Aulia",
			"Achmad Raka Dineza", "Alifan Hafidz Ath-Thariq", "Bayu April Nur Sabil Latif",
			"Budi Setiawan", "Muhammad Fazri", "Syawaludin Al-Ayubi",
		},
	},
	{
		id: "3-Int-IPS", name: "3-Intensif IPS", teacher: "Doni Subianto, SE", idPrefix: "3IPS",
		students: []string{
			"Azka Nabila Hidayat", "Hanifah Khayyirah Salim", "Keisha Alika", "Keysya Maulidini",
			"Revi Yusnia Alviani", "Rossa", "Yunita Fadziah", "Rayhan Atilla Rhmatulloh",
			"Muhamad Faishal Rasydan Aziz", "Radityo Adhatama Bungin", "Reza Adi Saputra",
			"Sahel Naeem Octara", "Syahrul Mukharom Asky",
		},
	},
}

// SeedClasses returns the built-in class list with fully expanded rosters.
// Each call returns fresh copies; callers may mutate freely.
func SeedClasses() []*ClassRoster {
	classes := make([]*ClassRoster, 0, len(seedClasses))
	for _, sc := range seedClasses {
		students := make([]Student, 0, len(sc.students))
		for i, name := range sc.students {
			students = append(students, Student{
				ID:   fmt.Sprintf("%s-%d", sc.idPrefix, i+1),
				Name: name,
			})
		}
		classes = append(classes, &ClassRoster{
			ID:              sc.id,
			Name:            sc.name,
			HomeroomTeacher: sc.teacher,
			Students:        students,
		})
	}
	return classes
}
